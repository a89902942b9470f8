package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

const userColumns = `id, wallet_address, username, avatar, reputation_score, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.WalletAddress, &u.Username, &u.Avatar,
		&u.ReputationScore, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser создает нового пользователя
func (r *postgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, wallet_address, username, avatar, reputation_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.WalletAddress, user.Username, user.Avatar, user.ReputationScore,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_wallet_address_key") {
			return repository.ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID получает пользователя по ID
func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByWallet получает пользователя по адресу кошелька
func (r *postgresRepository) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, wallet))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetUserStats считает агрегаты по отправкам пользователя
func (r *postgresRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_winner),
		       COALESCE(SUM(score), 0)
		FROM submissions
		WHERE user_id = $1
	`

	var stats models.UserStats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.SubmissionCount, &stats.WinCount, &stats.TotalScore)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// LockUserTx блокирует строку пользователя (SELECT ... FOR UPDATE)
func (r *postgresRepository) LockUserTx(ctx context.Context, tx repository.Transaction, id uuid.UUID) (*models.User, error) {
	stx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(stx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return user, nil
}

// AddReputationTx увеличивает репутацию и возвращает новое значение
func (r *postgresRepository) AddReputationTx(ctx context.Context, tx repository.Transaction, id uuid.UUID, delta int64) (int64, error) {
	stx, err := sqlTx(tx)
	if err != nil {
		return 0, err
	}
	if delta < 0 {
		return 0, fmt.Errorf("reputation delta must not be negative: %d", delta)
	}

	query := `
		UPDATE users
		SET reputation_score = reputation_score + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING reputation_score
	`

	var reputation int64
	if err := stx.QueryRowContext(ctx, query, id, delta).Scan(&reputation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to add reputation: %w", err)
	}
	return reputation, nil
}
