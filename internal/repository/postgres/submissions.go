package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

// CreateSubmissionTx сохраняет отправку внутри транзакции
func (r *postgresRepository) CreateSubmissionTx(ctx context.Context, tx repository.Transaction, s *models.Submission) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	recommendations, err := json.Marshal(nonNil(s.Recommendations))
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO submissions (id, challenge_id, user_id, code, score, feedback,
			recommendations, is_winner, sync_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err = stx.QueryRowContext(ctx, query,
		s.ID, s.ChallengeID, s.UserID, s.Code, s.Score, s.Feedback,
		recommendations, s.IsWinner, s.SyncRef,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// ListSubmissions возвращает отправки в порядке создания
func (r *postgresRepository) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", len(args)))
	}
	if filter.ChallengeID != nil {
		args = append(args, *filter.ChallengeID)
		conditions = append(conditions, fmt.Sprintf("s.challenge_id = $%d", len(args)))
	}
	if filter.Chain != "" {
		args = append(args, filter.Chain)
		conditions = append(conditions, fmt.Sprintf("c.chain = $%d", len(args)))
	}

	query := `
		SELECT s.id, s.challenge_id, s.user_id, s.code, s.score, s.feedback,
		       s.recommendations, s.is_winner, s.sync_ref, s.created_at
		FROM submissions s
		JOIN challenges c ON c.id = s.challenge_id`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY s.created_at, s.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		var (
			s               models.Submission
			recommendations []byte
		)
		if err := rows.Scan(&s.ID, &s.ChallengeID, &s.UserID, &s.Code, &s.Score, &s.Feedback,
			&recommendations, &s.IsWinner, &s.SyncRef, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if len(recommendations) > 0 {
			if err := json.Unmarshal(recommendations, &s.Recommendations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
			}
		}
		submissions = append(submissions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return submissions, nil
}

// GetHistoryTx читает историю пользователя под его блокировкой, включая
// отправку, созданную в этой же транзакции.
func (r *postgresRepository) GetHistoryTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]models.HistoryEntry, error) {
	stx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT s.challenge_id, c.category, c.chain, s.is_winner
		FROM submissions s
		JOIN challenges c ON c.id = s.challenge_id
		WHERE s.user_id = $1
		ORDER BY s.created_at, s.id
	`

	rows, err := stx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var history []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.ChallengeID, &h.Category, &h.Chain, &h.IsWinner); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return history, nil
}

// SetSubmissionSyncRef единственная поздняя запись в отправку
func (r *postgresRepository) SetSubmissionSyncRef(ctx context.Context, id uuid.UUID, ref string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE submissions SET sync_ref = $2 WHERE id = $1`, id, ref)
	if err != nil {
		return fmt.Errorf("failed to set submission sync ref: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrSubmissionNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
