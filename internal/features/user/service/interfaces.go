package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/models"
)

type UserService interface {
	// CreateUser регистрирует кошелёк. Повторная регистрация того же кошелька
	// возвращает существующего пользователя и created=false.
	CreateUser(ctx context.Context, req models.CreateUserRequest) (user *models.UserResponse, created bool, err error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.UserResponse, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.UserResponse, error)
	GetUserProfile(ctx context.Context, id uuid.UUID) (*models.UserProfileResponse, error)
}
