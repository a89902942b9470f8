package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

func newMockStore(t *testing.T) (repository.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var userRowColumns = []string{"id", "wallet_address", "username", "avatar", "reputation_score", "created_at", "updated_at"}

func TestGetUserByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUserByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateWallet(t *testing.T) {
	store, mock := newMockStore(t)
	user := &models.User{ID: uuid.New(), WalletAddress: "EQwallet"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.ID, user.WalletAddress, "", "", int64(0)).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "users_wallet_address_key"})

	err := store.CreateUser(context.Background(), user)
	assert.ErrorIs(t, err, repository.ErrDuplicateWallet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockUserAndAddReputationInTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "EQwallet", "alice", "", int64(10), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SET reputation_score = reputation_score + $2")).
		WithArgs(id, int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"reputation_score"}).AddRow(int64(19)))
	mock.ExpectCommit()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	user, err := store.LockUserTx(ctx, tx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.ReputationScore)

	reputation, err := store.AddReputationTx(ctx, tx, id, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(19), reputation)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReputationRejectsNegativeDelta(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = store.AddReputationTx(ctx, tx, uuid.New(), -1)
	assert.Error(t, err)
}

type foreignTx struct{}

func (foreignTx) Commit() error   { return nil }
func (foreignTx) Rollback() error { return nil }

func TestTxMethodsRejectForeignTransaction(t *testing.T) {
	store, _ := newMockStore(t)
	_, err := store.LockUserTx(context.Background(), foreignTx{}, uuid.New())
	assert.ErrorIs(t, err, repository.ErrInvalidTx)
}

func TestCreateBadgeDuplicateMapsToSentinel(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	badge := &models.Badge{ID: uuid.New(), UserID: uuid.New(), Type: models.BadgeGasOptimizer, Level: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO badges")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "uq_badges_user_type"})
	mock.ExpectRollback()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	err = store.CreateBadgeTx(ctx, tx, badge)
	assert.ErrorIs(t, err, repository.ErrDuplicateBadge)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLevelUpBadgeGuardsCurrentLevel(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND level = $2")).
		WithArgs(id, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND level = $2")).
		WithArgs(id, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, store.LevelUpBadgeTx(ctx, tx, id, 1, 2))
	assert.ErrorIs(t, store.LevelUpBadgeTx(ctx, tx, id, 1, 2), repository.ErrStaleBadgeLevel)
	assert.Error(t, store.LevelUpBadgeTx(ctx, tx, id, 5, 6))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHistoryJoinsChallenges(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	userID := uuid.New()
	challengeID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("JOIN challenges c ON c.id = s.challenge_id")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"challenge_id", "category", "chain", "is_winner"}).
			AddRow(challengeID.String(), "gas_optimization", "avalanche", true).
			AddRow(challengeID.String(), "gas_optimization", "avalanche", false))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	history, err := store.GetHistoryTx(ctx, tx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.HistoryEntry{
		ChallengeID: challengeID,
		Category:    models.CategoryGasOptimization,
		Chain:       "avalanche",
		IsWinner:    true,
	}, history[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChallengesBuildsFilter(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	columns := []string{"id", "title", "description", "category", "difficulty", "initial_code",
		"test_cases", "reward", "chain", "created_at", "ends_at", "is_active"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active AND chain = $1")).
		WithArgs("celo").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "Reentrancy", "", "security_exploit", "advanced", "", []byte(`[]`),
				25.0, "celo", now, nil, true))

	challenges, err := store.ListChallenges(context.Background(), models.ChallengeFilter{ActiveOnly: true, Chain: "celo"})
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, models.CategorySecurityExploit, challenges[0].Category)
	assert.Nil(t, challenges[0].EndsAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserStats(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FILTER (WHERE is_winner)")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"count", "wins", "total"}).AddRow(int64(3), int64(1), 240.5))

	stats, err := store.GetUserStats(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{SubmissionCount: 3, WinCount: 1, TotalScore: 240.5}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBadgeSyncedStaleLevel(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET onchain_level = $2, sync_ref = $3, is_onchain = (level <= $2)")).
		WithArgs(id, 2, "abcd").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkBadgeSynced(context.Background(), id, 2, "abcd")
	assert.ErrorIs(t, err, repository.ErrStaleBadgeLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
