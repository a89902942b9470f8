package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

func seed(t *testing.T) (*Store, *models.User, *models.Challenge) {
	t.Helper()
	s := NewStore()
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), WalletAddress: "EQwallet"}
	require.NoError(t, s.CreateUser(ctx, user))

	challenge := &models.Challenge{
		ID:       uuid.New(),
		Title:    "Gas golf",
		Category: models.CategoryGasOptimization,
		Chain:    "avalanche",
		IsActive: true,
	}
	require.NoError(t, s.CreateChallenge(ctx, challenge))
	return s, user, challenge
}

func TestCreateUserRejectsDuplicateWallet(t *testing.T) {
	s, user, _ := seed(t)
	err := s.CreateUser(context.Background(), &models.User{ID: uuid.New(), WalletAddress: user.WalletAddress})
	assert.ErrorIs(t, err, repository.ErrDuplicateWallet)
}

func TestCommitAppliesBufferedWrites(t *testing.T) {
	s, user, challenge := seed(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)

	_, err = s.LockUserTx(ctx, tx, user.ID)
	require.NoError(t, err)

	sub := &models.Submission{ID: uuid.New(), ChallengeID: challenge.ID, UserID: user.ID, Score: 92, IsWinner: true}
	require.NoError(t, s.CreateSubmissionTx(ctx, tx, sub))

	rep, err := s.AddReputationTx(ctx, tx, user.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), rep)

	history, err := s.GetHistoryTx(ctx, tx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "history must include the submission created in this transaction")

	badge := &models.Badge{ID: uuid.New(), UserID: user.ID, Type: models.BadgeGasOptimizer, Level: 1}
	require.NoError(t, s.CreateBadgeTx(ctx, tx, badge))
	require.NoError(t, s.LevelUpBadgeTx(ctx, tx, badge.ID, 1, 2))

	// до коммита ничего не видно снаружи
	stored, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ReputationScore)
	badges, err := s.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, badges)

	require.NoError(t, tx.Commit())

	stored, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), stored.ReputationScore)

	badges, err = s.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, 2, badges[0].Level)

	stats, err := s.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{SubmissionCount: 1, WinCount: 1, TotalScore: 92}, stats)

	assert.Error(t, tx.Rollback())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s, user, challenge := seed(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = s.LockUserTx(ctx, tx, user.ID)
	require.NoError(t, err)
	require.NoError(t, s.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), ChallengeID: challenge.ID, UserID: user.ID}))
	_, err = s.AddReputationTx(ctx, tx, user.ID, 5)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	subs, err := s.ListSubmissions(ctx, models.SubmissionFilter{UserID: &user.ID})
	require.NoError(t, err)
	assert.Empty(t, subs)

	stored, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ReputationScore)
}

func TestCommitWithCancelledContextRollsBack(t *testing.T) {
	s, user, challenge := seed(t)
	ctx, cancel := context.WithCancel(context.Background())

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = s.LockUserTx(ctx, tx, user.ID)
	require.NoError(t, err)
	require.NoError(t, s.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), ChallengeID: challenge.ID, UserID: user.ID}))

	cancel()
	assert.ErrorIs(t, tx.Commit(), context.Canceled)

	subs, err := s.ListSubmissions(context.Background(), models.SubmissionFilter{})
	require.NoError(t, err)
	assert.Empty(t, subs)

	// блокировка освобождена
	tx2, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	_, err = s.LockUserTx(context.Background(), tx2, user.ID)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback())
}

func TestLockUserSerializesTransactions(t *testing.T) {
	s, user, _ := seed(t)
	ctx := context.Background()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.BeginTx(ctx)
			assert.NoError(t, err)
			_, err = s.LockUserTx(ctx, tx, user.ID)
			assert.NoError(t, err)

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, tx.Commit())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestLockUserHonoursContext(t *testing.T) {
	s, user, _ := seed(t)

	holder, err := s.BeginTx(context.Background())
	require.NoError(t, err)
	_, err = s.LockUserTx(context.Background(), holder, user.ID)
	require.NoError(t, err)
	defer holder.Rollback()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = s.LockUserTx(ctx, waiter, user.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBadgeUniquenessAndLevelGuard(t *testing.T) {
	s, user, _ := seed(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	badge := &models.Badge{ID: uuid.New(), UserID: user.ID, Type: models.BadgeChallengeMaster, Level: 1}
	require.NoError(t, s.CreateBadgeTx(ctx, tx, badge))
	err = s.CreateBadgeTx(ctx, tx, &models.Badge{ID: uuid.New(), UserID: user.ID, Type: models.BadgeChallengeMaster, Level: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicateBadge)
	require.NoError(t, tx.Commit())

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, s.LevelUpBadgeTx(ctx, tx, badge.ID, 2, 3), repository.ErrStaleBadgeLevel)
	assert.ErrorIs(t, s.LevelUpBadgeTx(ctx, tx, uuid.New(), 1, 2), repository.ErrBadgeNotFound)
	assert.Error(t, s.LevelUpBadgeTx(ctx, tx, badge.ID, 5, 6))
	require.NoError(t, tx.Rollback())

	require.NoError(t, s.MarkBadgeSynced(ctx, badge.ID, 1, "ref"))
	assert.ErrorIs(t, s.MarkBadgeSynced(ctx, badge.ID, 1, "again"), repository.ErrStaleBadgeLevel)
	badges, err := s.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.True(t, badges[0].IsOnchain)
	assert.Equal(t, 1, badges[0].OnchainLevel)
	require.NotNil(t, badges[0].SyncRef)
	assert.Equal(t, "ref", *badges[0].SyncRef)
}

func TestMarkBadgeSyncedTracksLedgerLevel(t *testing.T) {
	s, user, _ := seed(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	badge := &models.Badge{ID: uuid.New(), UserID: user.ID, Type: models.BadgeGasOptimizer, Level: 1}
	require.NoError(t, s.CreateBadgeTx(ctx, tx, badge))
	require.NoError(t, tx.Commit())
	require.NoError(t, s.MarkBadgeSynced(ctx, badge.ID, 1, "mint"))

	for _, to := range []int{2, 3} {
		tx, err = s.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, s.LevelUpBadgeTx(ctx, tx, badge.ID, to-1, to))
		require.NoError(t, tx.Commit())
	}

	// леджер догнал только до 2: значок ещё не синхронизирован
	require.NoError(t, s.MarkBadgeSynced(ctx, badge.ID, 2, "up-1"))
	badges, err := s.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, 3, badges[0].Level)
	assert.Equal(t, 2, badges[0].OnchainLevel)
	assert.False(t, badges[0].IsOnchain)

	require.NoError(t, s.MarkBadgeSynced(ctx, badge.ID, 3, "up-2"))
	assert.ErrorIs(t, s.MarkBadgeSynced(ctx, badge.ID, 2, "late"), repository.ErrStaleBadgeLevel)
	badges, err = s.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, badges[0].OnchainLevel)
	assert.True(t, badges[0].IsOnchain)
	assert.Equal(t, "up-2", *badges[0].SyncRef)
}

func TestListSubmissionsByChain(t *testing.T) {
	s, user, challenge := seed(t)
	ctx := context.Background()

	celo := &models.Challenge{ID: uuid.New(), Category: models.CategorySecurityExploit, Chain: "celo", IsActive: true}
	require.NoError(t, s.CreateChallenge(ctx, celo))

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), ChallengeID: challenge.ID, UserID: user.ID}))
	require.NoError(t, s.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), ChallengeID: celo.ID, UserID: user.ID}))
	require.NoError(t, tx.Commit())

	subs, err := s.ListSubmissions(ctx, models.SubmissionFilter{Chain: "celo"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, celo.ID, subs[0].ChallengeID)

	active, err := s.ListChallenges(ctx, models.ChallengeFilter{ActiveOnly: true, Chain: "avalanche"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NoError(t, s.SetChallengeActive(ctx, challenge.ID, false))
	active, err = s.ListChallenges(ctx, models.ChallengeFilter{ActiveOnly: true, Chain: "avalanche"})
	require.NoError(t, err)
	assert.Empty(t, active)
}
