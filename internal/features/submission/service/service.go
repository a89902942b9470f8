package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/metrics"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/badge"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/scoring"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

const (
	defaultLedgerTimeout = 20 * time.Second
	defaultSyncBudget    = 40 * time.Second
)

// CacheInvalidator сбрасывает производные представления (лидерборд)
// после изменения состояния.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Deps: всё, что нужно конвейеру отправок. Создаётся явно в main.
type Deps struct {
	Store         repository.Store
	Scorer        scoring.Scorer
	Engine        *badge.Engine
	Ledger        ledger.Ledger
	Metrics       *metrics.Metrics
	Leaderboard   CacheInvalidator
	LedgerTimeout time.Duration
	// SyncBudget ограничивает все вызовы леджера одного запроса вместе.
	SyncBudget time.Duration
}

type Service struct {
	store         repository.Store
	scorer        scoring.Scorer
	engine        *badge.Engine
	ledger        ledger.Ledger
	metrics       *metrics.Metrics
	leaderboard   CacheInvalidator
	ledgerTimeout time.Duration
	syncBudget    time.Duration
	syncLocks     [64]sync.Mutex
	log           zerolog.Logger
}

func New(deps Deps) *Service {
	s := &Service{
		store:         deps.Store,
		scorer:        deps.Scorer,
		engine:        deps.Engine,
		ledger:        deps.Ledger,
		metrics:       deps.Metrics,
		leaderboard:   deps.Leaderboard,
		ledgerTimeout: deps.LedgerTimeout,
		syncBudget:    deps.SyncBudget,
		log:           logger.Component("submission"),
	}
	if s.ledger == nil {
		s.ledger = ledger.Disabled{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewUnregistered()
	}
	if s.ledgerTimeout <= 0 {
		s.ledgerTimeout = defaultLedgerTimeout
	}
	if s.syncBudget <= 0 {
		s.syncBudget = defaultSyncBudget
	}
	return s
}

// RecordResult: итог RecordSubmission. SyncFailures содержит ошибки
// EXTERNAL_SYNC_FAILURE; локальное состояние к этому моменту уже
// зафиксировано.
type RecordResult struct {
	Submission        *models.Submission    `json:"submission"`
	ReputationAwarded int64                 `json:"reputation_awarded"`
	Reputation        int64                 `json:"reputation_score"`
	Transitions       []badge.Transition    `json:"transitions"`
	Badges            []*models.Badge       `json:"badges"`
	SyncFailures      []*apperrors.AppError `json:"sync_failures,omitempty"`
}

// ProgressionResult is the outcome of EvaluateProgression.
type ProgressionResult struct {
	UserID       uuid.UUID             `json:"user_id"`
	Transitions  []badge.Transition    `json:"transitions"`
	Badges       []*models.Badge       `json:"badges"`
	SyncFailures []*apperrors.AppError `json:"sync_failures,omitempty"`
}

// appliedTransition связывает решение движка с записью значка после
// применения.
type appliedTransition struct {
	badge.Transition
	badge      *models.Badge
	levelAfter int
}

// RecordSubmission оценивает код, сохраняет отправку и для победителя
// начисляет репутацию и пересчитывает значки. Всё до синхронизации с
// леджером выполняется в одной транзакции под блокировкой пользователя.
func (s *Service) RecordSubmission(ctx context.Context, challengeID, userID uuid.UUID, code string) (*RecordResult, error) {
	if err := validation.ValidateCode(code); err != nil {
		return nil, apperrors.NewInvalidInputError("code", err.Error())
	}

	challenge, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, mapRepoError(err, "get challenge", challengeID)
	}
	if !challenge.IsActive {
		return nil, apperrors.NewConflictError("challenge", "challenge is closed for submissions").
			WithDetail("challenge_id", challengeID)
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, "get user", userID)
	}

	feedback := s.scorer.Score(code, challenge.Category)
	// порог победы сравнивается с точной оценкой, без округления
	score := clampScore(feedback.ScoreFor(challenge.Category))

	submission := &models.Submission{
		ID:              uuid.New(),
		ChallengeID:     challenge.ID,
		UserID:          userID,
		Code:            code,
		Score:           score,
		Feedback:        feedback.Feedback,
		Recommendations: feedback.Recommendations,
		IsWinner:        models.IsWinningScore(score),
	}

	result := &RecordResult{Submission: submission}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, mapRepoError(err, "begin transaction", userID)
	}
	defer tx.Rollback()

	user, err := s.store.LockUserTx(ctx, tx, userID)
	if err != nil {
		return nil, mapRepoError(err, "lock user", userID)
	}
	result.Reputation = user.ReputationScore

	if err := s.store.CreateSubmissionTx(ctx, tx, submission); err != nil {
		return nil, mapRepoError(err, "create submission", submission.ID)
	}

	var applied []appliedTransition
	if submission.IsWinner {
		result.ReputationAwarded = models.ReputationFor(score)
		result.Reputation, err = s.store.AddReputationTx(ctx, tx, userID, result.ReputationAwarded)
		if err != nil {
			return nil, mapRepoError(err, "add reputation", userID)
		}

		applied, err = s.progressTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapRepoError(err, "commit submission", submission.ID)
	}
	user.ReputationScore = result.Reputation

	s.observeCommitted(challenge.Category, submission, result.ReputationAwarded, applied)
	s.log.Info().
		Str("submission_id", submission.ID.String()).
		Str("user_id", userID.String()).
		Str("challenge_id", challenge.ID.String()).
		Float64("score", score).
		Bool("is_winner", submission.IsWinner).
		Int64("reputation_awarded", result.ReputationAwarded).
		Int("transitions", len(applied)).
		Msg("Submission recorded")

	// Дальше только внешние вызовы: блокировка уже снята, ошибки не
	// откатывают зафиксированное состояние.
	detached := context.WithoutCancel(ctx)
	syncCtx, cancel := context.WithTimeout(detached, s.syncBudget)
	defer cancel()
	result.SyncFailures = append(result.SyncFailures, s.syncBadges(syncCtx, userID, user.WalletAddress, applied, false)...)
	if failure := s.publishStats(syncCtx, user, challenge.Chain, submission); failure != nil {
		result.SyncFailures = append(result.SyncFailures, failure)
	}

	s.invalidateLeaderboard(detached)

	result.Transitions, result.Badges = splitApplied(applied)
	return result, nil
}

// EvaluateProgression прогоняет движок по текущей истории пользователя без
// новой отправки. При политике single_step каждый вызов поднимает значок
// не больше чем на уровень, поэтому догоняющий пересчёт можно повторять.
func (s *Service) EvaluateProgression(ctx context.Context, userID uuid.UUID) (*ProgressionResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, mapRepoError(err, "begin transaction", userID)
	}
	defer tx.Rollback()

	user, err := s.store.LockUserTx(ctx, tx, userID)
	if err != nil {
		return nil, mapRepoError(err, "lock user", userID)
	}

	applied, err := s.progressTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapRepoError(err, "commit progression", userID)
	}

	for _, a := range applied {
		s.metrics.BadgeTransitions.WithLabelValues(string(a.Type), string(a.Kind)).Inc()
	}

	result := &ProgressionResult{UserID: userID}
	detached := context.WithoutCancel(ctx)
	if len(applied) > 0 {
		s.log.Info().Str("user_id", userID.String()).Int("transitions", len(applied)).Msg("Progression caught up")
		s.invalidateLeaderboard(detached)
	}
	syncCtx, cancel := context.WithTimeout(detached, s.syncBudget)
	defer cancel()
	// отстающие в леджере значки догоняются и без новых переходов
	result.SyncFailures = s.syncBadges(syncCtx, userID, user.WalletAddress, applied, true)

	result.Transitions, result.Badges = splitApplied(applied)
	return result, nil
}

// progressTx читает историю и значки под блокировкой пользователя,
// запускает движок и применяет каждый переход.
func (s *Service) progressTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]appliedTransition, error) {
	history, err := s.store.GetHistoryTx(ctx, tx, userID)
	if err != nil {
		return nil, mapRepoError(err, "get history", userID)
	}
	badges, err := s.store.GetBadgesTx(ctx, tx, userID)
	if err != nil {
		return nil, mapRepoError(err, "get badges", userID)
	}

	byType := make(map[models.BadgeType]*models.Badge, len(badges))
	current := make(map[models.BadgeType]int, len(badges))
	for _, b := range badges {
		if _, dup := byType[b.Type]; dup {
			return nil, apperrors.NewInvariantError("more than one badge of type " + string(b.Type)).
				WithDetail("user_id", userID)
		}
		byType[b.Type] = b
		current[b.Type] = b.Level
	}

	transitions, err := s.engine.Evaluate(history, current)
	if err != nil {
		return nil, err
	}

	applied := make([]appliedTransition, 0, len(transitions))
	for _, tr := range transitions {
		a, err := s.applyTransition(ctx, tx, userID, tr, byType[tr.Type])
		if err != nil {
			return nil, err
		}
		applied = append(applied, a)
	}
	return applied, nil
}

// applyTransition единственное место, где создаются и повышаются значки.
func (s *Service) applyTransition(ctx context.Context, tx repository.Transaction, userID uuid.UUID, tr badge.Transition, existing *models.Badge) (appliedTransition, error) {
	entry, err := s.engine.Catalog().Lookup(tr.Type)
	if err != nil {
		return appliedTransition{}, err
	}

	switch tr.Kind {
	case badge.TransitionCreate:
		if existing != nil {
			return appliedTransition{}, apperrors.NewInvariantError("badge already exists: " + string(tr.Type)).
				WithDetail("user_id", userID)
		}
		b := &models.Badge{
			ID:          uuid.New(),
			UserID:      userID,
			Type:        tr.Type,
			Level:       tr.To,
			Description: entry.Description,
			ImageURL:    entry.ImageURL(),
		}
		if err := s.store.CreateBadgeTx(ctx, tx, b); err != nil {
			if errors.Is(err, repository.ErrDuplicateBadge) {
				return appliedTransition{}, apperrors.Wrap(err, apperrors.ErrCodeInvariant, "duplicate badge under user lock").
					WithDetail("badge_type", tr.Type)
			}
			return appliedTransition{}, mapRepoError(err, "create badge", userID)
		}
		return appliedTransition{Transition: tr, badge: b, levelAfter: b.Level}, nil

	case badge.TransitionLevelUp:
		if existing == nil || existing.Level != tr.From {
			return appliedTransition{}, apperrors.NewInvariantError("level-up does not match stored badge: " + string(tr.Type)).
				WithDetail("user_id", userID)
		}
		if err := s.store.LevelUpBadgeTx(ctx, tx, existing.ID, tr.From, tr.To); err != nil {
			if errors.Is(err, repository.ErrStaleBadgeLevel) {
				return appliedTransition{}, apperrors.Wrap(err, apperrors.ErrCodeInvariant, "badge level changed under user lock").
					WithDetail("badge_type", tr.Type)
			}
			return appliedTransition{}, mapRepoError(err, "level up badge", existing.ID)
		}
		b := *existing
		b.Level = tr.To
		b.IsOnchain = false
		return appliedTransition{Transition: tr, badge: &b, levelAfter: b.Level}, nil
	}

	return appliedTransition{}, apperrors.NewInvariantError("unknown transition kind " + string(tr.Kind))
}

// ListUserSubmissions returns the user's submissions, oldest first.
func (s *Service) ListUserSubmissions(ctx context.Context, userID uuid.UUID) ([]*models.Submission, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, "get user", userID)
	}
	subs, err := s.store.ListSubmissions(ctx, models.SubmissionFilter{UserID: &userID})
	if err != nil {
		return nil, mapRepoError(err, "list submissions", userID)
	}
	return nonNilSubmissions(subs), nil
}

// ListChallengeSubmissions returns all submissions made against a challenge.
func (s *Service) ListChallengeSubmissions(ctx context.Context, challengeID uuid.UUID) ([]*models.Submission, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, mapRepoError(err, "get challenge", challengeID)
	}
	subs, err := s.store.ListSubmissions(ctx, models.SubmissionFilter{ChallengeID: &challengeID})
	if err != nil {
		return nil, mapRepoError(err, "list submissions", challengeID)
	}
	return nonNilSubmissions(subs), nil
}

// Evaluate scores code without recording anything.
func (s *Service) Evaluate(code string, category models.Category) (models.Feedback, error) {
	if err := validation.ValidateCode(code); err != nil {
		return models.Feedback{}, apperrors.NewInvalidInputError("code", err.Error())
	}
	return s.scorer.Score(code, category), nil
}

func (s *Service) observeCommitted(category models.Category, sub *models.Submission, reputation int64, applied []appliedTransition) {
	outcome := "loss"
	if sub.IsWinner {
		outcome = "win"
	}
	s.metrics.SubmissionsTotal.WithLabelValues(string(category), outcome).Inc()
	if reputation > 0 {
		s.metrics.ReputationAwarded.Add(float64(reputation))
	}
	for _, a := range applied {
		s.metrics.BadgeTransitions.WithLabelValues(string(a.Type), string(a.Kind)).Inc()
	}
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

func splitApplied(applied []appliedTransition) ([]badge.Transition, []*models.Badge) {
	transitions := make([]badge.Transition, 0, len(applied))
	badges := make([]*models.Badge, 0, len(applied))
	for _, a := range applied {
		transitions = append(transitions, a.Transition)
		badges = append(badges, a.badge)
	}
	return transitions, badges
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func nonNilSubmissions(subs []*models.Submission) []*models.Submission {
	if subs == nil {
		return []*models.Submission{}
	}
	return subs
}
