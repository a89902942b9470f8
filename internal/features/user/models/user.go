package models

import (
	"time"

	"github.com/google/uuid"

	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// CreateUserRequest: регистрация участника по кошельку
// @Description Register a participant by wallet address
type CreateUserRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,tonaddr" example:"EQBvW8Z5huBkMJYdnfAEM5JqTNkuWX3diqYENkWsIL0XggGG"`
	Username      string `json:"username" validate:"omitempty,min=3,max=32" example:"gasgolfer"`
	Avatar        string `json:"avatar" validate:"omitempty,url,max=512" example:"https://example.com/a.png"`
}

// UserResponse представляет публичную информацию о пользователе
// @Description Public participant data
type UserResponse struct {
	ID              uuid.UUID `json:"id" example:"3f1c9b0e-6a7b-4d3c-9a51-0d2b8f6f1e42"`
	WalletAddress   string    `json:"wallet_address" example:"EQBvW8Z5huBkMJYdnfAEM5JqTNkuWX3diqYENkWsIL0XggGG"`
	Username        string    `json:"username" example:"gasgolfer"`
	Avatar          string    `json:"avatar,omitempty"`
	ReputationScore int64     `json:"reputation_score" example:"42"`
	CreatedAt       time.Time `json:"created_at" example:"2024-03-15T14:30:00Z"`
}

// UserProfileResponse: пользователь вместе со статистикой и значками
// @Description Participant with submission stats and badges
type UserProfileResponse struct {
	UserResponse
	Stats  domain.UserStats `json:"stats"`
	Badges []*domain.Badge  `json:"badges"`
}
