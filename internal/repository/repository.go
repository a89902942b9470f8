package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrBadgeNotFound      = errors.New("badge not found")
	ErrDuplicateWallet    = errors.New("wallet already registered")
	ErrDuplicateBadge     = errors.New("badge of this type already exists for user")
	// ErrStaleBadgeLevel возвращается, когда уровень значка изменился
	// между чтением и обновлением.
	ErrStaleBadgeLevel = errors.New("badge level changed concurrently")
	ErrInvalidTx       = errors.New("transaction belongs to another store")
)

type Transaction interface {
	Commit() error
	Rollback() error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error)

	// LockUserTx блокирует строку пользователя до конца транзакции.
	// Это точка сериализации всех изменений репутации и значков.
	LockUserTx(ctx context.Context, tx Transaction, id uuid.UUID) (*models.User, error)
	AddReputationTx(ctx context.Context, tx Transaction, id uuid.UUID, delta int64) (int64, error)
}

type ChallengeRepository interface {
	CreateChallenge(ctx context.Context, challenge *models.Challenge) error
	GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]*models.Challenge, error)
	SetChallengeActive(ctx context.Context, id uuid.UUID, active bool) error
}

type SubmissionRepository interface {
	CreateSubmissionTx(ctx context.Context, tx Transaction, submission *models.Submission) error
	ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	GetHistoryTx(ctx context.Context, tx Transaction, userID uuid.UUID) ([]models.HistoryEntry, error)
	SetSubmissionSyncRef(ctx context.Context, id uuid.UUID, ref string) error
}

type BadgeRepository interface {
	ListBadges(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error)
	ListAllBadges(ctx context.Context) ([]*models.Badge, error)
	GetBadgesTx(ctx context.Context, tx Transaction, userID uuid.UUID) ([]*models.Badge, error)
	CreateBadgeTx(ctx context.Context, tx Transaction, badge *models.Badge) error
	// LevelUpBadgeTx переводит значок с уровня from на to. Если текущий
	// уровень не равен from, возвращает ErrStaleBadgeLevel.
	LevelUpBadgeTx(ctx context.Context, tx Transaction, id uuid.UUID, from, to int) error
	// MarkBadgeSynced записывает уровень, подтверждённый леджером. Если
	// записанный уровень уже не ниже level, возвращает ErrStaleBadgeLevel.
	MarkBadgeSynced(ctx context.Context, id uuid.UUID, level int, ref string) error
}

// Store объединяет все репозитории и транзакции над ними.
type Store interface {
	BeginTx(ctx context.Context) (Transaction, error)
	UserRepository
	ChallengeRepository
	SubmissionRepository
	BadgeRepository
}
