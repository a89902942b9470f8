package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// WinningScore is the inclusive score a submission needs to be a winner.
const WinningScore = 85.0

// Submission представляет оценённую отправку кода. После создания меняется
// только SyncRef.
// @Description Scored code submission
type Submission struct {
	ID              uuid.UUID `json:"id"`
	ChallengeID     uuid.UUID `json:"challenge_id"`
	UserID          uuid.UUID `json:"user_id"`
	Code            string    `json:"code"`
	Score           float64   `json:"score" example:"92.5"`
	Feedback        string    `json:"feedback"`
	Recommendations []string  `json:"recommendations"`
	IsWinner        bool      `json:"is_winner"`
	SyncRef         *string   `json:"transaction_hash,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsWinningScore reports whether score meets the win threshold.
func IsWinningScore(score float64) bool {
	return score >= WinningScore
}

// ReputationFor returns the reputation a winning score earns: floor(score/10).
func ReputationFor(score float64) int64 {
	if score <= 0 {
		return 0
	}
	return int64(math.Floor(score / 10))
}

// SubmissionFilter narrows submission listings. Zero values mean "any".
type SubmissionFilter struct {
	UserID      *uuid.UUID
	ChallengeID *uuid.UUID
	Chain       string
}

// HistoryEntry is the projection of a submission the progression engine reads.
type HistoryEntry struct {
	ChallengeID uuid.UUID
	Category    Category
	Chain       string
	IsWinner    bool
}
