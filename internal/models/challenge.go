package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category is the kind of contest a challenge belongs to.
type Category string

const (
	CategoryGasOptimization Category = "gas_optimization"
	CategorySecurityExploit Category = "security_exploit"
)

// Valid reports whether c is one of the categories a challenge can be created with.
// The scoring port also accepts other values and treats them neutrally.
func (c Category) Valid() bool {
	switch c {
	case CategoryGasOptimization, CategorySecurityExploit:
		return true
	}
	return false
}

// Difficulty уровень сложности челленджа
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Challenge представляет задание, на которое пользователи присылают контракты
// @Description Contest challenge
type Challenge struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title" example:"Cheaper ERC20 transfer"`
	Description string          `json:"description"`
	Category    Category        `json:"challenge_type" example:"gas_optimization" enums:"gas_optimization,security_exploit"`
	Difficulty  Difficulty      `json:"difficulty" example:"beginner" enums:"beginner,intermediate,advanced"`
	InitialCode string          `json:"initial_code"`
	TestCases   json.RawMessage `json:"test_cases" swaggertype:"array,object"`
	Reward      float64         `json:"reward" example:"25"`
	Chain       string          `json:"chain" example:"avalanche"`
	CreatedAt   time.Time       `json:"created_at"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// ChallengeFilter narrows challenge listings.
type ChallengeFilter struct {
	ActiveOnly bool
	Chain      string
}
