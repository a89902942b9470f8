package mapper

import (
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/models"
	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// ToUserResponse maps User model to UserResponse DTO
func ToUserResponse(user *domain.User) *models.UserResponse {
	return &models.UserResponse{
		ID:              user.ID,
		WalletAddress:   user.WalletAddress,
		Username:        user.Username,
		Avatar:          user.Avatar,
		ReputationScore: user.ReputationScore,
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserProfileResponse добавляет к пользователю статистику и значки
func ToUserProfileResponse(user *domain.User, stats domain.UserStats, badges []*domain.Badge) *models.UserProfileResponse {
	if badges == nil {
		badges = []*domain.Badge{}
	}
	return &models.UserProfileResponse{
		UserResponse: *ToUserResponse(user),
		Stats:        stats,
		Badges:       badges,
	}
}
