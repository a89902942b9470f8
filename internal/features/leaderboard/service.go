package leaderboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/cache"
	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/metrics"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

const (
	cacheKeyPrefix = "leaderboard:"
	allChainsKey   = "all"

	defaultCacheTTL = 30 * time.Second

	// общий дедлайн на ранги всех строк одного рейтинга
	defaultRankTimeout = 3 * time.Second
	rankLookupWorkers  = 8
)

type Deps struct {
	Store    repository.Store
	Ledger   ledger.Ledger
	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	Limit    int

	// RankTimeout ограничивает все запросы рангов одной сборки рейтинга.
	RankTimeout time.Duration
}

type Service struct {
	store   repository.Store
	ledger  ledger.Ledger
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	limit   int
	rankTTL time.Duration
	log     zerolog.Logger
}

func NewService(deps Deps) *Service {
	s := &Service{
		store:   deps.Store,
		ledger:  deps.Ledger,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		metrics: deps.Metrics,
		limit:   deps.Limit,
		rankTTL: deps.RankTimeout,
		log:     logger.Component("leaderboard"),
	}
	if s.ledger == nil {
		s.ledger = ledger.Disabled{}
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.ttl <= 0 {
		s.ttl = defaultCacheTTL
	}
	if s.metrics == nil {
		s.metrics = metrics.NewUnregistered()
	}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.rankTTL <= 0 {
		s.rankTTL = defaultRankTimeout
	}
	return s
}

func cacheKey(chain string) string {
	if chain == "" {
		return cacheKeyPrefix + allChainsKey
	}
	return cacheKeyPrefix + chain
}

// GetLeaderboard возвращает рейтинг, при необходимости только по одной сети.
// Результат кэшируется до следующей записанной отправки или истечения TTL.
func (s *Service) GetLeaderboard(ctx context.Context, chain string) ([]Entry, error) {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain != "" {
		if err := validation.ValidateChain(chain); err != nil {
			return nil, apperrors.NewInvalidInputError("chain", err.Error())
		}
	}

	key := cacheKey(chain)
	var cached []Entry
	switch err := s.cache.Get(ctx, key, &cached); {
	case err == nil:
		s.metrics.LeaderboardCache.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		s.metrics.LeaderboardCache.WithLabelValues("miss").Inc()
	default:
		s.metrics.LeaderboardCache.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
	}

	entries, err := s.build(ctx, chain)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache write failed")
	}
	return entries, nil
}

func (s *Service) build(ctx context.Context, chain string) ([]Entry, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	submissions, err := s.store.ListSubmissions(ctx, models.SubmissionFilter{Chain: chain})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list submissions", err)
	}
	badges, err := s.store.ListAllBadges(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list badges", err)
	}
	challenges, err := s.store.ListChallenges(ctx, models.ChallengeFilter{Chain: chain})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list challenges", err)
	}

	entries := Aggregate(users, submissions, badges, challenges, Options{Chain: chain, Limit: s.limit})
	s.attachRanks(ctx, entries)
	return entries, nil
}

// attachRanks дополняет строки рангом из контракта лидерборда. Запросы идут
// параллельно под одним общим дедлайном; что не успело, остаётся без ранга.
// Ошибки леджера не мешают отдать рейтинг.
func (s *Service) attachRanks(ctx context.Context, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.rankTTL)
	defer cancel()

	wallets := make([]string, len(entries))
	for i := range entries {
		wallets[i] = entries[i].WalletAddress
	}

	var (
		mu     sync.Mutex
		ranks  = make([]*int, len(entries))
		closed bool
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		sem := make(chan struct{}, rankLookupWorkers)
		for i := range wallets {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				rank, err := s.ledger.UserRank(ctx, wallets[i])
				if errors.Is(err, ledger.ErrDisabled) {
					cancel()
					return
				}
				if err != nil {
					s.log.Debug().Err(err).Str("wallet", wallets[i]).Msg("On-chain rank unavailable")
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if !closed {
					ranks[i] = &rank
				}
			}(i)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	closed = true
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.log.Warn().Dur("timeout", s.rankTTL).Msg("On-chain rank lookups cut by deadline")
	}
	for i, r := range ranks {
		entries[i].OnchainRank = r
	}
}

// GetUserBadges returns the user's badges ordered by badge code.
func (s *Service) GetUserBadges(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", userID)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}

	badges, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list badges", err)
	}
	if badges == nil {
		badges = []*models.Badge{}
	}
	return badges, nil
}

// Invalidate сбрасывает все закэшированные рейтинги.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, cacheKeyPrefix+"*")
}
