package mapper

import (
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/models"
	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

func ToChallengeResponse(c *domain.Challenge) *models.ChallengeResponse {
	return &models.ChallengeResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    string(c.Category),
		Difficulty:  string(c.Difficulty),
		InitialCode: c.InitialCode,
		TestCases:   c.TestCases,
		Reward:      c.Reward,
		Chain:       c.Chain,
		CreatedAt:   c.CreatedAt,
		EndsAt:      c.EndsAt,
		IsActive:    c.IsActive,
	}
}

func ToChallengesResponse(list []*domain.Challenge) *models.ChallengesResponse {
	items := make([]models.ChallengeResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToChallengeResponse(c))
	}
	return &models.ChallengesResponse{Items: items, Total: len(items)}
}
