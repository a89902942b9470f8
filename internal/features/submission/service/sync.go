package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

// syncTarget значок и уровень, до которого его нужно довести в леджере.
type syncTarget struct {
	badge *models.Badge
	code  uint8
	level int
}

// lockSync сериализует синхронизацию значков одного пользователя: уровень,
// подтверждённый леджером, читается и сдвигается только под этой блокировкой.
func (s *Service) lockSync(userID uuid.UUID) func() {
	mu := &s.syncLocks[int(userID[len(userID)-1])%len(s.syncLocks)]
	mu.Lock()
	return mu.Unlock
}

// syncBadges доводит значки в леджере до их локальных уровней. Значок, который
// леджер ещё не видел, выпускается сразу на целевом уровне; иначе отправляется
// по одному повышению на каждый уровень разницы с подтверждённым. С catchUp
// догоняются и отстающие значки, которых нет среди applied.
func (s *Service) syncBadges(ctx context.Context, userID uuid.UUID, wallet string, applied []appliedTransition, catchUp bool) []*apperrors.AppError {
	if len(applied) == 0 && !catchUp {
		return nil
	}

	unlock := s.lockSync(userID)
	defer unlock()

	var failures []*apperrors.AppError
	for _, t := range s.syncTargets(ctx, userID, applied, catchUp) {
		from := t.badge.OnchainLevel
		if from >= t.level {
			continue
		}

		reached, ref, op, err := s.pushBadge(ctx, wallet, t, from)
		if errors.Is(err, ledger.ErrDisabled) {
			continue
		}
		if reached > from {
			if markErr := s.markSynced(ctx, t.badge, reached, ref); markErr != nil {
				s.log.Warn().Err(markErr).
					Str("badge_id", t.badge.ID.String()).
					Msg("Failed to store badge sync reference")
			}
		}
		if err != nil {
			failures = append(failures, apperrors.NewExternalSyncError(op, err).
				WithDetail("badge_type", t.badge.Type).
				WithDetail("level", t.level).
				WithDetail("onchain_level", reached))
		}
	}
	return failures
}

// syncTargets перечитывает значки пользователя, чтобы взять свежий
// onchain_level: его могла сдвинуть синхронизация соседней отправки.
func (s *Service) syncTargets(ctx context.Context, userID uuid.UUID, applied []appliedTransition, catchUp bool) []syncTarget {
	fresh := make(map[uuid.UUID]*models.Badge)
	badges, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to reload badges before ledger sync")
	}
	for _, b := range badges {
		fresh[b.ID] = b
	}

	targets := make([]syncTarget, 0, len(applied))
	seen := make(map[uuid.UUID]bool, len(applied))
	for _, a := range applied {
		if b, ok := fresh[a.badge.ID]; ok {
			a.badge.OnchainLevel = b.OnchainLevel
		}
		seen[a.badge.ID] = true
		targets = append(targets, syncTarget{badge: a.badge, code: a.Code, level: a.levelAfter})
	}

	if catchUp {
		for _, b := range badges {
			if seen[b.ID] || b.OnchainLevel >= b.Level {
				continue
			}
			code, err := b.Type.Code()
			if err != nil {
				s.log.Error().Err(err).Str("badge_id", b.ID.String()).Msg("Skip badge of unknown type")
				continue
			}
			targets = append(targets, syncTarget{badge: b, code: code, level: b.Level})
		}
	}
	return targets
}

// pushBadge отправляет в леджер вызовы, поднимающие значок с from до
// t.level, и возвращает достигнутый уровень и ссылку на последнюю транзакцию.
func (s *Service) pushBadge(ctx context.Context, wallet string, t syncTarget, from int) (int, string, string, error) {
	if from == 0 {
		res := s.callLedger(ctx, ledger.OpMintBadge, func(ctx context.Context) ledger.Result {
			return s.ledger.MintBadge(ctx, wallet, t.code, t.level)
		})
		if !res.OK() {
			return 0, "", ledger.OpMintBadge, res.Err
		}
		return t.level, res.Ref, ledger.OpMintBadge, nil
	}

	reached, ref := from, ""
	for reached < t.level {
		res := s.callLedger(ctx, ledger.OpLevelUpBadge, func(ctx context.Context) ledger.Result {
			return s.ledger.LevelUpBadge(ctx, wallet, t.code)
		})
		if !res.OK() {
			return reached, ref, ledger.OpLevelUpBadge, res.Err
		}
		reached++
		ref = res.Ref
	}
	return reached, ref, ledger.OpLevelUpBadge, nil
}

func (s *Service) markSynced(ctx context.Context, b *models.Badge, level int, ref string) error {
	err := s.store.MarkBadgeSynced(ctx, b.ID, level, ref)
	switch {
	case err == nil:
		b.SyncRef = &ref
		b.OnchainLevel = level
		b.IsOnchain = b.Level <= level
		return nil
	case errors.Is(err, repository.ErrStaleBadgeLevel):
		s.log.Debug().Str("badge_id", b.ID.String()).Int("level", level).Msg("Skip sync mark below confirmed level")
		return nil
	}
	return err
}

// publishStats публикует свежую статистику пользователя и сохраняет ссылку
// на транзакцию в отправке.
func (s *Service) publishStats(ctx context.Context, user *models.User, chain string, sub *models.Submission) *apperrors.AppError {
	stats, err := s.store.GetUserStats(ctx, user.ID)
	if err != nil {
		return apperrors.NewExternalSyncError(ledger.OpPublishUserStats, fmt.Errorf("read user stats: %w", err))
	}

	res := s.callLedger(ctx, ledger.OpPublishUserStats, func(ctx context.Context) ledger.Result {
		return s.ledger.PublishUserStats(ctx, ledger.UserStats{
			Wallet:          user.WalletAddress,
			Username:        user.DisplayName(),
			Chain:           chain,
			SubmissionCount: stats.SubmissionCount,
			WinCount:        stats.WinCount,
			TotalScore:      stats.TotalScore,
			Reputation:      user.ReputationScore,
		})
	})
	if errors.Is(res.Err, ledger.ErrDisabled) {
		return nil
	}
	if !res.OK() {
		return apperrors.NewExternalSyncError(ledger.OpPublishUserStats, res.Err).
			WithDetail("submission_id", sub.ID)
	}

	if err := s.store.SetSubmissionSyncRef(ctx, sub.ID, res.Ref); err != nil {
		s.log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to store submission sync reference")
		return nil
	}
	ref := res.Ref
	sub.SyncRef = &ref
	return nil
}

// callLedger ограничивает один вызов таймаутом и считает его в метриках.
func (s *Service) callLedger(ctx context.Context, op string, call func(ctx context.Context) ledger.Result) ledger.Result {
	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	res := call(ctx)
	if errors.Is(res.Err, ledger.ErrDisabled) {
		s.metrics.LedgerSyncTotal.WithLabelValues(op, "disabled").Inc()
		return res
	}
	s.metrics.ObserveLedgerSync(op, res.OK())
	if !res.OK() {
		s.log.Warn().Err(res.Err).Str("operation", op).Msg("Ledger sync failed")
	}
	return res
}

// mapRepoError переводит ошибки хранилища в ошибки приложения.
func mapRepoError(err error, operation string, id uuid.UUID) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperrors.NewNotFoundError("user", id)
	case errors.Is(err, repository.ErrChallengeNotFound):
		return apperrors.NewNotFoundError("challenge", id)
	case errors.Is(err, repository.ErrBadgeNotFound):
		return apperrors.NewNotFoundError("badge", id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperrors.NewDatabaseError(operation, err)
}
