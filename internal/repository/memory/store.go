// Package memory is an in-process Store used for local development
// (STORAGE_DRIVER=memory) and service tests. It mirrors the Postgres
// semantics the services rely on: a per-user row lock held until the
// transaction ends, buffered writes applied atomically on commit, and
// uniqueness of (user, badge type).
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository"
)

var errTxDone = errors.New("transaction has already been committed or rolled back")

type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*models.User
	wallets     map[string]uuid.UUID
	challenges  map[uuid.UUID]*models.Challenge
	submissions []*models.Submission
	badges      map[uuid.UUID]*models.Badge

	locksMu   sync.Mutex
	userLocks map[uuid.UUID]chan struct{}

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*models.User),
		wallets:    make(map[string]uuid.UUID),
		challenges: make(map[uuid.UUID]*models.Challenge),
		badges:     make(map[uuid.UUID]*models.Badge),
		userLocks:  make(map[uuid.UUID]chan struct{}),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) userLock(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.userLocks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.userLocks[id] = l
	}
	return l
}

type memoryTransaction struct {
	store *Store
	ctx   context.Context

	mu     sync.Mutex
	done   bool
	locked map[uuid.UUID]chan struct{}

	submissions []*models.Submission
	reputation  map[uuid.UUID]int64
	newBadges   []*models.Badge
	levelUps    map[uuid.UUID]int
}

func (s *Store) BeginTx(ctx context.Context) (repository.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTransaction{
		store:      s,
		ctx:        ctx,
		locked:     make(map[uuid.UUID]chan struct{}),
		reputation: make(map[uuid.UUID]int64),
		levelUps:   make(map[uuid.UUID]int),
	}, nil
}

// Commit применяет буферизованные записи атомарно. Как и database/sql,
// отменённый контекст транзакции приводит к откату.
func (t *memoryTransaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.release()

	if err := t.ctx.Err(); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range t.newBadges {
		for _, existing := range s.badges {
			if existing.UserID == b.UserID && existing.Type == b.Type {
				return repository.ErrDuplicateBadge
			}
		}
	}

	now := s.now()
	for id, delta := range t.reputation {
		if u, ok := s.users[id]; ok {
			u.ReputationScore += delta
			u.UpdatedAt = now
		}
	}
	s.submissions = append(s.submissions, t.submissions...)
	for _, b := range t.newBadges {
		s.badges[b.ID] = b
	}
	for id, level := range t.levelUps {
		if b, ok := s.badges[id]; ok {
			b.Level = level
			b.IsOnchain = false
			b.UpdatedAt = now
		}
	}
	return nil
}

func (t *memoryTransaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	t.done = true
	t.release()
	return nil
}

func (t *memoryTransaction) release() {
	for id, l := range t.locked {
		<-l
		delete(t.locked, id)
	}
}

func memTx(tx repository.Transaction, s *Store) (*memoryTransaction, error) {
	mt, ok := tx.(*memoryTransaction)
	if !ok || mt == nil || mt.store != s {
		return nil, repository.ErrInvalidTx
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.done {
		return nil, errTxDone
	}
	return mt, nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.wallets[user.WalletAddress]; exists {
		return repository.ErrDuplicateWallet
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	s.wallets[user.WalletAddress] = user.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.wallets[wallet]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.String() < users[j].ID.String() })
	return users, nil
}

func (s *Store) GetUserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats models.UserStats
	for _, sub := range s.submissions {
		if sub.UserID != userID {
			continue
		}
		stats.SubmissionCount++
		stats.TotalScore += sub.Score
		if sub.IsWinner {
			stats.WinCount++
		}
	}
	return stats, nil
}

// LockUserTx ждёт освобождения пользователя другой транзакцией либо
// отмены контекста.
func (s *Store) LockUserTx(ctx context.Context, tx repository.Transaction, id uuid.UUID) (*models.User, error) {
	mt, err := memTx(tx, s)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}

	mt.mu.Lock()
	_, held := mt.locked[id]
	mt.mu.Unlock()
	if !held {
		l := s.userLock(id)
		select {
		case l <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		mt.mu.Lock()
		mt.locked[id] = l
		mt.mu.Unlock()
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mt.mu.Lock()
	user.ReputationScore += mt.reputation[id]
	mt.mu.Unlock()
	return user, nil
}

func (s *Store) AddReputationTx(ctx context.Context, tx repository.Transaction, id uuid.UUID, delta int64) (int64, error) {
	mt, err := memTx(tx, s)
	if err != nil {
		return 0, err
	}
	if delta < 0 {
		return 0, errors.New("reputation delta must not be negative")
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return 0, err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.reputation[id] += delta
	return user.ReputationScore + mt.reputation[id], nil
}

// Challenges

func (s *Store) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge.CreatedAt = s.now()
	cp := *challenge
	s.challenges[challenge.ID] = &cp
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges[id]
	if !ok {
		return nil, repository.ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Challenge
	for _, c := range s.challenges {
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		if filter.Chain != "" && c.Chain != filter.Chain {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) SetChallengeActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok {
		return repository.ErrChallengeNotFound
	}
	c.IsActive = active
	return nil
}

// Submissions

func (s *Store) CreateSubmissionTx(ctx context.Context, tx repository.Transaction, sub *models.Submission) error {
	mt, err := memTx(tx, s)
	if err != nil {
		return err
	}
	if _, err := s.GetChallenge(ctx, sub.ChallengeID); err != nil {
		return err
	}
	sub.CreatedAt = s.now()
	cp := cloneSubmission(sub)

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.submissions = append(mt.submissions, cp)
	return nil
}

func (s *Store) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Submission
	for _, sub := range s.submissions {
		if filter.UserID != nil && sub.UserID != *filter.UserID {
			continue
		}
		if filter.ChallengeID != nil && sub.ChallengeID != *filter.ChallengeID {
			continue
		}
		if filter.Chain != "" {
			c, ok := s.challenges[sub.ChallengeID]
			if !ok || c.Chain != filter.Chain {
				continue
			}
		}
		out = append(out, cloneSubmission(sub))
	}
	return out, nil
}

func (s *Store) GetHistoryTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]models.HistoryEntry, error) {
	mt, err := memTx(tx, s)
	if err != nil {
		return nil, err
	}

	mt.mu.Lock()
	pending := append([]*models.Submission(nil), mt.submissions...)
	mt.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var history []models.HistoryEntry
	for _, sub := range append(append([]*models.Submission(nil), s.submissions...), pending...) {
		if sub.UserID != userID {
			continue
		}
		c, ok := s.challenges[sub.ChallengeID]
		if !ok {
			return nil, repository.ErrChallengeNotFound
		}
		history = append(history, models.HistoryEntry{
			ChallengeID: sub.ChallengeID,
			Category:    c.Category,
			Chain:       c.Chain,
			IsWinner:    sub.IsWinner,
		})
	}
	return history, nil
}

func (s *Store) SetSubmissionSyncRef(ctx context.Context, id uuid.UUID, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.submissions {
		if sub.ID == id {
			r := ref
			sub.SyncRef = &r
			return nil
		}
	}
	return repository.ErrSubmissionNotFound
}

// Badges

func (s *Store) ListBadges(ctx context.Context, userID uuid.UUID) ([]*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Badge
	for _, b := range s.badges {
		if b.UserID == userID {
			out = append(out, cloneBadge(b))
		}
	}
	sortBadges(out)
	return out, nil
}

func (s *Store) ListAllBadges(ctx context.Context) ([]*models.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Badge, 0, len(s.badges))
	for _, b := range s.badges {
		out = append(out, cloneBadge(b))
	}
	sortBadges(out)
	return out, nil
}

// GetBadgesTx возвращает значки с учётом ещё не зафиксированных изменений.
func (s *Store) GetBadgesTx(ctx context.Context, tx repository.Transaction, userID uuid.UUID) ([]*models.Badge, error) {
	mt, err := memTx(tx, s)
	if err != nil {
		return nil, err
	}
	committed, err := s.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, b := range committed {
		if level, ok := mt.levelUps[b.ID]; ok {
			b.Level = level
			b.IsOnchain = false
		}
	}
	for _, b := range mt.newBadges {
		if b.UserID != userID {
			continue
		}
		cp := cloneBadge(b)
		if level, ok := mt.levelUps[b.ID]; ok {
			cp.Level = level
		}
		committed = append(committed, cp)
	}
	sortBadges(committed)
	return committed, nil
}

func (s *Store) CreateBadgeTx(ctx context.Context, tx repository.Transaction, badge *models.Badge) error {
	mt, err := memTx(tx, s)
	if err != nil {
		return err
	}
	current, err := s.GetBadgesTx(ctx, tx, badge.UserID)
	if err != nil {
		return err
	}
	for _, b := range current {
		if b.Type == badge.Type {
			return repository.ErrDuplicateBadge
		}
	}

	now := s.now()
	badge.CreatedAt, badge.UpdatedAt = now, now

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.newBadges = append(mt.newBadges, cloneBadge(badge))
	return nil
}

func (s *Store) LevelUpBadgeTx(ctx context.Context, tx repository.Transaction, id uuid.UUID, from, to int) error {
	mt, err := memTx(tx, s)
	if err != nil {
		return err
	}
	if to <= from || to > models.MaxBadgeLevel {
		return errors.New("invalid badge level transition")
	}

	current := -1
	s.mu.RLock()
	if b, ok := s.badges[id]; ok {
		current = b.Level
	}
	s.mu.RUnlock()

	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, b := range mt.newBadges {
		if b.ID == id {
			current = b.Level
		}
	}
	if current < 0 {
		return repository.ErrBadgeNotFound
	}
	if level, ok := mt.levelUps[id]; ok {
		current = level
	}
	if current != from {
		return repository.ErrStaleBadgeLevel
	}
	mt.levelUps[id] = to
	return nil
}

func (s *Store) MarkBadgeSynced(ctx context.Context, id uuid.UUID, level int, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.badges[id]
	if !ok {
		return repository.ErrBadgeNotFound
	}
	if b.OnchainLevel >= level {
		return repository.ErrStaleBadgeLevel
	}
	r := ref
	b.SyncRef = &r
	b.OnchainLevel = level
	b.IsOnchain = b.Level <= level
	b.UpdatedAt = s.now()
	return nil
}

func cloneSubmission(sub *models.Submission) *models.Submission {
	cp := *sub
	cp.Recommendations = append([]string(nil), sub.Recommendations...)
	if sub.SyncRef != nil {
		r := *sub.SyncRef
		cp.SyncRef = &r
	}
	return &cp
}

func cloneBadge(b *models.Badge) *models.Badge {
	cp := *b
	if b.SyncRef != nil {
		r := *b.SyncRef
		cp.SyncRef = &r
	}
	return &cp
}

func sortBadges(badges []*models.Badge) {
	sort.Slice(badges, func(i, j int) bool {
		if badges[i].UserID != badges[j].UserID {
			return strings.Compare(badges[i].UserID.String(), badges[j].UserID.String()) < 0
		}
		ci, _ := badges[i].Type.Code()
		cj, _ := badges[j].Type.Code()
		return ci < cj
	})
}
