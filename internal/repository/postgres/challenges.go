package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

const challengeColumns = `id, title, description, category, difficulty, initial_code, test_cases,
	reward, chain, created_at, ends_at, is_active`

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		c        models.Challenge
		testCase []byte
		endsAt   sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty,
		&c.InitialCode, &testCase, &c.Reward, &c.Chain, &c.CreatedAt, &endsAt, &c.IsActive); err != nil {
		return nil, err
	}
	c.TestCases = testCase
	if endsAt.Valid {
		t := endsAt.Time
		c.EndsAt = &t
	}
	return &c, nil
}

// CreateChallenge создает новый челлендж
func (r *postgresRepository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	query := `
		INSERT INTO challenges (id, title, description, category, difficulty, initial_code,
			test_cases, reward, chain, ends_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	testCases := []byte(challenge.TestCases)
	if len(testCases) == 0 {
		testCases = []byte("[]")
	}

	err := r.db.QueryRowContext(ctx, query,
		challenge.ID, challenge.Title, challenge.Description, challenge.Category,
		challenge.Difficulty, challenge.InitialCode, testCases, challenge.Reward,
		challenge.Chain, challenge.EndsAt, challenge.IsActive,
	).Scan(&challenge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetChallenge получает челлендж по ID
func (r *postgresRepository) GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	challenge, err := scanChallenge(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return challenge, nil
}

// ListChallenges возвращает челленджи, новые первыми
func (r *postgresRepository) ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]*models.Challenge, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.Chain != "" {
		args = append(args, filter.Chain)
		conditions = append(conditions, fmt.Sprintf("chain = $%d", len(args)))
	}

	query := `SELECT ` + challengeColumns + ` FROM challenges`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, challenge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate challenges: %w", err)
	}
	return challenges, nil
}

// SetChallengeActive меняет единственное изменяемое поле челленджа
func (r *postgresRepository) SetChallengeActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE challenges SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrChallengeNotFound
	}
	return nil
}
