package models

// UserStats is the aggregate of a user's submissions that gets mirrored
// to the ledger. TotalScore is the sum of all scores.
type UserStats struct {
	SubmissionCount int64   `json:"submission_count"`
	WinCount        int64   `json:"win_count"`
	TotalScore      float64 `json:"total_score"`
}
