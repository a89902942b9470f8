package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateChallengeRequest: создание челленджа администратором
// @Description Challenge intake payload
type CreateChallengeRequest struct {
	Title       string          `json:"title" validate:"required,max=200" example:"Cheaper ERC20 transfer"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"challenge_type" validate:"required,category" example:"gas_optimization" enums:"gas_optimization,security_exploit"`
	Difficulty  string          `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced" example:"beginner"`
	InitialCode string          `json:"initial_code"`
	TestCases   json.RawMessage `json:"test_cases" swaggertype:"array,object"`
	Reward      float64         `json:"reward" validate:"gte=0" example:"25"`
	Chain       string          `json:"chain" validate:"required,chain" example:"avalanche"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
}

// SetActiveRequest открывает или закрывает приём отправок
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required" example:"false"`
}

// ChallengeResponse представляет челлендж в ответах API
// @Description Contest challenge
type ChallengeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"challenge_type" example:"gas_optimization"`
	Difficulty  string          `json:"difficulty" example:"beginner"`
	InitialCode string          `json:"initial_code"`
	TestCases   json.RawMessage `json:"test_cases" swaggertype:"array,object"`
	Reward      float64         `json:"reward"`
	Chain       string          `json:"chain" example:"avalanche"`
	CreatedAt   time.Time       `json:"created_at"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// ChallengesResponse is a list of challenges
type ChallengesResponse struct {
	Items []ChallengeResponse `json:"items"`
	Total int                 `json:"total" example:"3"`
}
