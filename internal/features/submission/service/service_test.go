package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/badge"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger/ledgertest"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/scoring"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository/memory"
)

const sampleCode = "pragma solidity ^0.8.0; contract A {}"

type fixture struct {
	store     *memory.Store
	recorder  *ledgertest.Recorder
	user      *models.User
	gas       *models.Challenge
	security  *models.Challenge
	avalanche *models.Challenge
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.NewStore(), recorder: ledgertest.NewRecorder()}

	f.user = &models.User{ID: uuid.New(), WalletAddress: "EQuser", Username: "alice"}
	require.NoError(t, f.store.CreateUser(ctx, f.user))

	f.gas = &models.Challenge{ID: uuid.New(), Category: models.CategoryGasOptimization, Chain: "celo", IsActive: true}
	f.security = &models.Challenge{ID: uuid.New(), Category: models.CategorySecurityExploit, Chain: "celo", IsActive: true}
	f.avalanche = &models.Challenge{ID: uuid.New(), Category: models.CategoryGasOptimization, Chain: "avalanche", IsActive: true}
	for _, c := range []*models.Challenge{f.gas, f.security, f.avalanche} {
		require.NoError(t, f.store.CreateChallenge(ctx, c))
	}
	return f
}

func (f *fixture) service(scorer scoring.Scorer, policy badge.Policy) *Service {
	return New(Deps{
		Store:  f.store,
		Scorer: scorer,
		Engine: badge.NewEngine(badge.MustCatalog(badge.DefaultSpecialistChain), policy),
		Ledger: f.recorder,
	})
}

func fixedScore(gas, security float64) scoring.Scorer {
	return scoring.Fixed(models.Feedback{GasScore: gas, SecurityScore: security, Feedback: "ok"})
}

func badgeOf(t *testing.T, store *memory.Store, userID uuid.UUID, typ models.BadgeType) *models.Badge {
	t.Helper()
	badges, err := store.ListBadges(context.Background(), userID)
	require.NoError(t, err)
	var found *models.Badge
	for _, b := range badges {
		if b.Type == typ {
			require.Nil(t, found, "more than one %s badge", typ)
			found = b
		}
	}
	return found
}

func TestFirstWinCreatesBadgeAndAwardsReputation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.92, 0.1), badge.PolicySingleStep)

	res, err := svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)

	assert.Equal(t, 92.0, res.Submission.Score)
	assert.True(t, res.Submission.IsWinner)
	assert.Equal(t, int64(9), res.ReputationAwarded)
	assert.Equal(t, int64(9), res.Reputation)
	assert.Empty(t, res.SyncFailures)

	require.Len(t, res.Transitions, 1)
	assert.Equal(t, models.BadgeGasOptimizer, res.Transitions[0].Type)
	assert.Equal(t, badge.TransitionCreate, res.Transitions[0].Kind)

	b := badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.Level)
	assert.True(t, b.IsOnchain)
	assert.Equal(t, "/static/badges/gas_optimizer.svg", b.ImageURL)

	mints := f.recorder.Calls(ledger.OpMintBadge)
	require.Len(t, mints, 1)
	assert.Equal(t, uint8(0), mints[0].Code)
	assert.Equal(t, 1, mints[0].Level)

	stats := f.recorder.Calls(ledger.OpPublishUserStats)
	require.Len(t, stats, 1)
	assert.Equal(t, ledger.UserStats{
		Wallet: "EQuser", Username: "alice", Chain: "celo",
		SubmissionCount: 1, WinCount: 1, TotalScore: 92, Reputation: 9,
	}, stats[0].Stats)
	require.NotNil(t, res.Submission.SyncRef)

	user, err := f.store.GetUserByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ReputationScore)
}

func TestLevelUpIsSingleStepPerPass(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).Level)

	res, err := svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)

	gas := badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	assert.Equal(t, 2, gas.Level)
	assert.Equal(t, 1, badgeOf(t, f.store, f.user.ID, models.BadgeChallengeMaster).Level)

	types := make([]models.BadgeType, 0, len(res.Transitions))
	for _, tr := range res.Transitions {
		types = append(types, tr.Type)
	}
	assert.Equal(t, []models.BadgeType{models.BadgeGasOptimizer, models.BadgeChallengeMaster}, types)

	// уже выпущенный значок повышается, а не выпускается заново
	levelUps := f.recorder.Calls(ledger.OpLevelUpBadge)
	require.Len(t, levelUps, 1)
	assert.Equal(t, uint8(0), levelUps[0].Code)
}

func TestCascadePolicyJumpsToQualifyingLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// история побед без значков: так бывает после смены каталога
	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, f.store.CreateSubmissionTx(ctx, tx, &models.Submission{
			ID: uuid.New(), ChallengeID: f.gas.ID, UserID: f.user.ID, Score: 90, IsWinner: true,
		}))
	}
	require.NoError(t, tx.Commit())

	res, err := f.service(fixedScore(0, 0), badge.PolicyCascade).EvaluateProgression(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, res.Transitions)

	assert.Equal(t, 3, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).Level)
	assert.Equal(t, 2, badgeOf(t, f.store, f.user.ID, models.BadgeChallengeMaster).Level)
	assert.Equal(t, 1, badgeOf(t, f.store, f.user.ID, models.BadgeTopContributor).Level)

	again, err := f.service(fixedScore(0, 0), badge.PolicyCascade).EvaluateProgression(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Transitions)
}

func TestEvaluateProgressionCatchesUpOneLevelPerCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.store.BeginTx(ctx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, f.store.CreateSubmissionTx(ctx, tx, &models.Submission{
			ID: uuid.New(), ChallengeID: f.gas.ID, UserID: f.user.ID, Score: 90, IsWinner: true,
		}))
	}
	require.NoError(t, tx.Commit())

	svc := f.service(fixedScore(0, 0), badge.PolicySingleStep)
	for want := 1; want <= 3; want++ {
		_, err := svc.EvaluateProgression(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, want, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).Level)
	}

	// дальше метрика не пускает
	for i := 0; i < 3; i++ {
		_, err := svc.EvaluateProgression(ctx, f.user.ID)
		require.NoError(t, err)
	}
	res, err := svc.EvaluateProgression(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Transitions)
	assert.Equal(t, 3, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).Level)
}

func TestLedgerFailureKeepsLocalState(t *testing.T) {
	f := newFixture(t)
	f.recorder.FailOn(ledger.OpMintBadge, errors.New("liteserver timeout"))
	svc := f.service(fixedScore(0.95, 0), badge.PolicySingleStep)

	res, err := svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)

	require.Len(t, res.SyncFailures, 1)
	assert.Equal(t, apperrors.ErrCodeExternalSync, res.SyncFailures[0].Code)

	b := badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.Level)
	assert.False(t, b.IsOnchain)
	assert.Nil(t, b.SyncRef)

	// следующая победа снова пытается выпустить значок целиком
	f.recorder.FailOn(ledger.OpMintBadge, nil)
	for i := 0; i < 2; i++ {
		_, err = svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
		require.NoError(t, err)
	}
	var gasMints []ledgertest.Call
	for _, c := range f.recorder.Calls(ledger.OpMintBadge) {
		if c.Code == 0 {
			gasMints = append(gasMints, c)
		}
	}
	require.Len(t, gasMints, 2)
	assert.Equal(t, 2, gasMints[1].Level)
	assert.Empty(t, f.recorder.Calls(ledger.OpLevelUpBadge))
	assert.True(t, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).IsOnchain)
}

func TestFailedLevelUpIsReplayedOnNextTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)
	gasCode, err := models.BadgeGasOptimizer.Code()
	require.NoError(t, err)

	_, err = svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	require.Equal(t, 1, f.recorder.Level(f.user.WalletAddress, gasCode))

	f.recorder.FailOn(ledger.OpLevelUpBadge, errors.New("liteserver timeout"))
	var res *RecordResult
	for i := 0; i < 2; i++ {
		res, err = svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
		require.NoError(t, err)
	}
	// третья победа поднимает gas до 2, леджер остался на 1
	require.Len(t, res.SyncFailures, 1)
	assert.Equal(t, apperrors.ErrCodeExternalSync, res.SyncFailures[0].Code)
	b := badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	assert.Equal(t, 2, b.Level)
	assert.Equal(t, 1, b.OnchainLevel)
	assert.False(t, b.IsOnchain)

	f.recorder.FailOn(ledger.OpLevelUpBadge, nil)
	for i := 3; i < 10; i++ {
		res, err = svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
		require.NoError(t, err)
	}
	assert.Empty(t, res.SyncFailures)

	b = badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	assert.Equal(t, 3, b.Level)
	assert.Equal(t, 3, b.OnchainLevel)
	assert.True(t, b.IsOnchain)
	assert.Equal(t, b.Level, f.recorder.Level(f.user.WalletAddress, gasCode))

	var gasLevelUps int
	for _, c := range f.recorder.Calls(ledger.OpLevelUpBadge) {
		if c.Code == gasCode {
			gasLevelUps++
		}
	}
	// одна неудачная попытка и два шага 1 -> 3
	assert.Equal(t, 3, gasLevelUps)
	require.Len(t, f.recorder.Calls(ledger.OpMintBadge), 3)
}

func TestEvaluateProgressionSyncsLaggingBadge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)
	gasCode, err := models.BadgeGasOptimizer.Code()
	require.NoError(t, err)

	f.recorder.FailOn(ledger.OpLevelUpBadge, errors.New("liteserver timeout"))
	for i := 0; i < 3; i++ {
		_, err = svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.recorder.Level(f.user.WalletAddress, gasCode))

	f.recorder.FailOn(ledger.OpLevelUpBadge, nil)
	res, err := svc.EvaluateProgression(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Transitions)
	assert.Empty(t, res.SyncFailures)

	b := badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer)
	assert.Equal(t, 2, b.Level)
	assert.Equal(t, 2, b.OnchainLevel)
	assert.True(t, b.IsOnchain)
	assert.Equal(t, 2, f.recorder.Level(f.user.WalletAddress, gasCode))

	// повторный вызов ничего не отправляет
	before := len(f.recorder.Calls())
	_, err = svc.EvaluateProgression(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, f.recorder.Calls(), before)
}

func TestDisabledLedgerIsNotReportedAsFailure(t *testing.T) {
	f := newFixture(t)
	svc := New(Deps{
		Store:  f.store,
		Scorer: fixedScore(0.9, 0),
		Engine: badge.NewEngine(badge.MustCatalog(badge.DefaultSpecialistChain), badge.PolicySingleStep),
		Ledger: ledger.Disabled{},
	})

	res, err := svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	assert.Empty(t, res.SyncFailures)
	assert.False(t, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).IsOnchain)
}

func TestLosingSubmissionDoesNotProgress(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.5, 0.99), badge.PolicySingleStep)

	res, err := svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)

	assert.False(t, res.Submission.IsWinner)
	assert.Equal(t, int64(0), res.ReputationAwarded)
	assert.Empty(t, res.Transitions)
	assert.Empty(t, f.recorder.Calls(ledger.OpMintBadge))
	// статистика публикуется и для проигрыша
	assert.Len(t, f.recorder.Calls(ledger.OpPublishUserStats), 1)

	badges, err := f.store.ListBadges(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestWinThresholdUsesExactScore(t *testing.T) {
	for name, tc := range map[string]struct {
		gas        float64
		winner     bool
		reputation int64
	}{
		"just below":  {gas: 0.84996, winner: false, reputation: 0},
		"float below": {gas: 0.8499999999999999, winner: false, reputation: 0},
		"exactly 85":  {gas: 0.85, winner: true, reputation: 8},
		"comfortably": {gas: 0.87, winner: true, reputation: 8},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			svc := f.service(fixedScore(tc.gas, 0), badge.PolicySingleStep)

			res, err := svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
			require.NoError(t, err)
			assert.InDelta(t, tc.gas*100, res.Submission.Score, 1e-9)
			assert.Equal(t, tc.winner, res.Submission.IsWinner)
			assert.Equal(t, tc.reputation, res.ReputationAwarded)
			assert.Equal(t, tc.reputation, res.Reputation)
		})
	}
}

func TestSecurityChallengeUsesSecurityScore(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.1, 0.9), badge.PolicySingleStep)

	res, err := svc.RecordSubmission(context.Background(), f.security.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	assert.Equal(t, 90.0, res.Submission.Score)

	require.NotNil(t, badgeOf(t, f.store, f.user.ID, models.BadgeSecurityExpert))
	require.NotNil(t, badgeOf(t, f.store, f.user.ID, models.BadgeVulnerabilityHunter))
	assert.Nil(t, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer))
}

func TestSpecialistBadgeFollowsChallengeChain(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)

	_, err := svc.RecordSubmission(context.Background(), f.avalanche.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	assert.NotNil(t, badgeOf(t, f.store, f.user.ID, models.BadgeAvalancheSpecialist))
}

func TestConcurrentWinsCreateOneBadge(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordSubmission(context.Background(), f.gas.ID, f.user.ID, sampleCode)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	badges, err := f.store.ListBadges(context.Background(), f.user.ID)
	require.NoError(t, err)
	count := map[models.BadgeType]int{}
	for _, b := range badges {
		count[b.Type]++
	}
	assert.Equal(t, 1, count[models.BadgeGasOptimizer])
	// 8 побед: уровень 2 (порог 3), challenge master 1 (порог 3), top contributor 1 (порог 5)
	assert.Equal(t, 2, badgeOf(t, f.store, f.user.ID, models.BadgeGasOptimizer).Level)

	user, err := f.store.GetUserByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n*9), user.ReputationScore)
}

// cancellingStore отменяет контекст посреди транзакции.
type cancellingStore struct {
	*memory.Store
	cancel context.CancelFunc
}

func (s *cancellingStore) GetBadgesTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]*models.Badge, error) {
	s.cancel()
	return s.Store.GetBadgesTx(ctx, tx, userID)
}

func TestCancellationRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(Deps{
		Store:  &cancellingStore{Store: f.store, cancel: cancel},
		Scorer: fixedScore(0.9, 0),
		Engine: badge.NewEngine(badge.MustCatalog(badge.DefaultSpecialistChain), badge.PolicySingleStep),
		Ledger: f.recorder,
	})

	_, err := svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
	require.ErrorIs(t, err, context.Canceled)

	subs, err := f.store.ListSubmissions(context.Background(), models.SubmissionFilter{UserID: &f.user.ID})
	require.NoError(t, err)
	assert.Empty(t, subs)

	user, err := f.store.GetUserByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.ReputationScore)

	badges, err := f.store.ListBadges(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, badges)
	assert.Empty(t, f.recorder.Calls())
}

func TestRecordSubmissionRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.service(fixedScore(0.9, 0), badge.PolicySingleStep)
	ctx := context.Background()

	_, err := svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, "   ")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

	_, err = svc.RecordSubmission(ctx, uuid.New(), f.user.ID, sampleCode)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	_, err = svc.RecordSubmission(ctx, f.gas.ID, uuid.New(), sampleCode)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	require.NoError(t, f.store.SetChallengeActive(ctx, f.gas.ID, false))
	_, err = svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))

	subs, err := f.store.ListSubmissions(ctx, models.SubmissionFilter{})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func TestListsAndInvalidation(t *testing.T) {
	f := newFixture(t)
	inv := &countingInvalidator{}
	svc := New(Deps{
		Store:       f.store,
		Scorer:      fixedScore(0.9, 0),
		Engine:      badge.NewEngine(badge.MustCatalog(badge.DefaultSpecialistChain), badge.PolicySingleStep),
		Ledger:      f.recorder,
		Leaderboard: inv,
	})
	ctx := context.Background()

	first, err := svc.RecordSubmission(ctx, f.gas.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	_, err = svc.RecordSubmission(ctx, f.security.ID, f.user.ID, sampleCode)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.n)

	mine, err := svc.ListUserSubmissions(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.Submission.ID, mine[0].ID)

	byChallenge, err := svc.ListChallengeSubmissions(ctx, f.gas.ID)
	require.NoError(t, err)
	assert.Len(t, byChallenge, 1)

	empty, err := svc.ListChallengeSubmissions(ctx, f.avalanche.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListUserSubmissions(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}
