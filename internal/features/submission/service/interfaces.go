package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

type SubmissionService interface {
	RecordSubmission(ctx context.Context, challengeID, userID uuid.UUID, code string) (*RecordResult, error)
	EvaluateProgression(ctx context.Context, userID uuid.UUID) (*ProgressionResult, error)
	ListUserSubmissions(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error)
	ListChallengeSubmissions(ctx context.Context, challengeID uuid.UUID) ([]*models.Submission, error)
	Evaluate(code string, category models.Category) (models.Feedback, error)
}

var _ SubmissionService = (*Service)(nil)
