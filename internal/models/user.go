package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет участника платформы, идентифицируемого кошельком
// @Description Contest participant identified by wallet address
type User struct {
	ID              uuid.UUID `json:"id" example:"3f1c9b0e-6a7b-4d3c-9a51-0d2b8f6f1e42"`
	WalletAddress   string    `json:"wallet_address" example:"EQBvW8Z5huBkMJYdnfAEM5JqTNkuWX3diqYENkWsIL0XggGG"`
	Username        string    `json:"username" example:"gasgolfer"`
	Avatar          string    `json:"avatar,omitempty"`
	ReputationScore int64     `json:"reputation_score" example:"42"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayName returns the username, or "Anonymous" when none was set.
func (u *User) DisplayName() string {
	if u.Username == "" {
		return "Anonymous"
	}
	return u.Username
}
