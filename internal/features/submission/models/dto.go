package models

import "github.com/google/uuid"

// SubmitRequest: отправка кода на челлендж
// @Description Code submission
type SubmitRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required" example:"3f1c9b0e-6a7b-4d3c-9a51-0d2b8f6f1e42"`
	Code   string    `json:"code" validate:"required" example:"pragma solidity ^0.8.0; contract Token { ... }"`
}

// EvaluateRequest: оценка кода без сохранения
// @Description Dry-run evaluation request
type EvaluateRequest struct {
	Code     string `json:"code" validate:"required"`
	Category string `json:"challenge_type" validate:"required" example:"gas_optimization"`
}
