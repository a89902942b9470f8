package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

const badgeColumns = `id, user_id, badge_type, level, description, image_url, sync_ref,
	onchain_level, is_onchain, created_at, updated_at`

// queryer реализуют и *sql.DB, и *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func scanBadge(row rowScanner) (*models.Badge, error) {
	var b models.Badge
	if err := row.Scan(&b.ID, &b.UserID, &b.Type, &b.Level, &b.Description, &b.ImageURL,
		&b.SyncRef, &b.OnchainLevel, &b.IsOnchain, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func queryBadges(ctx context.Context, q queryer, query string, args ...interface{}) ([]*models.Badge, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badges: %w", err)
	}
	return badges, nil
}

func (r *postgresRepository) ListBadges(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE user_id = $1 ORDER BY created_at, badge_type`
	return queryBadges(ctx, r.db, query, userID)
}

func (r *postgresRepository) ListAllBadges(ctx context.Context) ([]*models.Badge, error) {
	query := `SELECT ` + badgeColumns + ` FROM badges ORDER BY user_id, badge_type`
	return queryBadges(ctx, r.db, query)
}

func (r *postgresRepository) GetBadgesTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]*models.Badge, error) {
	stx, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + badgeColumns + ` FROM badges WHERE user_id = $1 ORDER BY badge_type`
	return queryBadges(ctx, stx, query, userID)
}

// CreateBadgeTx создает значок. Уникальность (user_id, badge_type)
// проверяется и ограничением таблицы.
func (r *postgresRepository) CreateBadgeTx(ctx context.Context, tx repository.Transaction, badge *models.Badge) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO badges (id, user_id, badge_type, level, description, image_url, sync_ref,
			onchain_level, is_onchain)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err = stx.QueryRowContext(ctx, query,
		badge.ID, badge.UserID, badge.Type, badge.Level, badge.Description,
		badge.ImageURL, badge.SyncRef, badge.OnchainLevel, badge.IsOnchain,
	).Scan(&badge.CreatedAt, &badge.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_badges_user_type") {
			return repository.ErrDuplicateBadge
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}
	return nil
}

// LevelUpBadgeTx обновляет уровень только если он всё ещё равен from.
// Повышение уровня сбрасывает is_onchain: в леджере ещё старый уровень.
func (r *postgresRepository) LevelUpBadgeTx(ctx context.Context, tx repository.Transaction, id uuid.UUID, from, to int) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}
	if to <= from || to > models.MaxBadgeLevel {
		return fmt.Errorf("invalid badge level transition %d -> %d", from, to)
	}

	query := `
		UPDATE badges
		SET level = $3, is_onchain = FALSE, updated_at = NOW()
		WHERE id = $1 AND level = $2
	`

	result, err := stx.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to level up badge: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrStaleBadgeLevel
	}
	return nil
}

// MarkBadgeSynced поднимает onchain_level до level. is_onchain становится
// TRUE, только когда леджер догнал локальный уровень.
func (r *postgresRepository) MarkBadgeSynced(ctx context.Context, id uuid.UUID, level int, ref string) error {
	query := `
		UPDATE badges
		SET onchain_level = $2, sync_ref = $3, is_onchain = (level <= $2), updated_at = NOW()
		WHERE id = $1 AND onchain_level < $2
	`

	result, err := r.db.ExecContext(ctx, query, id, level, ref)
	if err != nil {
		return fmt.Errorf("failed to mark badge synced: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrStaleBadgeLevel
	}
	return nil
}
