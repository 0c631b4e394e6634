// services/memory_store.go - In-process Store, used by tests and local runs
package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"lifetracker/models"
)

// MemoryStore keeps every record in maps behind one RWMutex. Commit swaps the
// whole progress document under the write lock, so readers never observe a
// partially applied update.
type MemoryStore struct {
	mu sync.RWMutex

	progress     map[string]*models.UserProgress
	games        []models.Game
	achievements []models.Achievement
	unlocks      map[string]map[string]models.UserAchievement
	transactions map[string][]models.PointTransaction
	counters     map[string]models.UserCounters
	resets       map[string]*models.WeeklyReset
	nextGameID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		progress:     make(map[string]*models.UserProgress),
		unlocks:      make(map[string]map[string]models.UserAchievement),
		transactions: make(map[string][]models.PointTransaction),
		counters:     make(map[string]models.UserCounters),
		resets:       make(map[string]*models.WeeklyReset),
		nextGameID:   1,
	}
}

func (s *MemoryStore) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[userID]
	if !ok {
		return nil, fmt.Errorf("progress for %s: %w", userID, ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ListProgress(ctx context.Context) ([]models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserProgress, 0, len(s.progress))
	for _, p := range s.progress {
		out = append(out, *p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.progress))
	for id := range s.progress {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Commit(ctx context.Context, c Commit) error {
	if c.Progress == nil {
		return fmt.Errorf("commit without progress")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := c.Progress.UserID
	current, exists := s.progress[userID]
	switch {
	case !exists && c.ExpectedVersion != 0,
		exists && current.Version != c.ExpectedVersion:
		return fmt.Errorf("progress for %s: %w", userID, ErrConcurrentModification)
	}

	next := c.Progress.Clone()
	next.Version = c.ExpectedVersion + 1
	next.UpdatedAt = time.Now().UTC()
	s.progress[userID] = next
	c.Progress.Version = next.Version

	for _, ua := range c.Achievements {
		rows := s.unlocks[ua.UserID]
		if rows == nil {
			rows = make(map[string]models.UserAchievement)
			s.unlocks[ua.UserID] = rows
		}
		if _, dup := rows[ua.AchievementID]; dup {
			continue
		}
		rows[ua.AchievementID] = ua
	}
	if c.Transaction != nil {
		s.transactions[userID] = append(s.transactions[userID], *c.Transaction)
	}
	return nil
}

func (s *MemoryStore) ActiveGame(ctx context.Context) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.games {
		if s.games[i].IsActive {
			g := s.games[i]
			return &g, nil
		}
	}
	return nil, fmt.Errorf("active game: %w", ErrNotFound)
}

func (s *MemoryStore) Achievements(ctx context.Context) ([]models.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.achievements), nil
}

func (s *MemoryStore) Counters(ctx context.Context, userID string) (models.UserCounters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.counters[userID]
	if !ok {
		return models.UserCounters{UserID: userID}, nil
	}
	return c, nil
}

func (s *MemoryStore) SetCounters(ctx context.Context, c models.UserCounters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	s.counters[c.UserID] = c
	return nil
}

func (s *MemoryStore) UserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserAchievement, 0, len(s.unlocks[userID]))
	for _, ua := range s.unlocks[userID] {
		out = append(out, ua)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.After(out[j].UnlockedAt)
		}
		return out[i].AchievementID < out[j].AchievementID
	})
	return out, nil
}

func (s *MemoryStore) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.PointTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.transactions[userID]
	out := make([]models.PointTransaction, 0, limit)
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *MemoryStore) TransactionStats(ctx context.Context, userID string, since time.Time) (int64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := 0
	for _, tx := range s.transactions[userID] {
		if !tx.CreatedAt.Before(since) {
			sum += tx.Points
		}
	}
	return int64(len(s.transactions[userID])), sum, nil
}

func (s *MemoryStore) CreateGame(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.games {
		if existing.Version == g.Version {
			return fmt.Errorf("game version %d: %w", g.Version, ErrAlreadyExists)
		}
	}
	now := time.Now().UTC()
	g.ID = s.nextGameID
	s.nextGameID++
	g.CreatedAt, g.UpdatedAt = now, now
	if g.IsActive {
		for i := range s.games {
			s.games[i].IsActive = false
		}
	}
	s.games = append(s.games, *g)
	return nil
}

func (s *MemoryStore) ListGames(ctx context.Context) ([]models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.games)
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (s *MemoryStore) ActivateGame(ctx context.Context, id uint) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.games, func(g models.Game) bool { return g.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	for i := range s.games {
		s.games[i].IsActive = i == idx
	}
	g := s.games[idx]
	return &g, nil
}

func (s *MemoryStore) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.achievements {
		if existing.AchievementID == a.AchievementID {
			return fmt.Errorf("achievement %s: %w", a.AchievementID, ErrAlreadyExists)
		}
	}
	a.ID = uint(len(s.achievements) + 1)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.achievements = append(s.achievements, *a)
	return nil
}

func (s *MemoryStore) ClaimWeeklyReset(ctx context.Context, weekKey string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.resets[weekKey]; done {
		return false, nil
	}
	s.resets[weekKey] = &models.WeeklyReset{WeekKey: weekKey, Status: models.WeeklyResetRunning, StartedAt: at}
	return true, nil
}

func (s *MemoryStore) FinishWeeklyReset(ctx context.Context, weekKey string, out WeeklyResetOutcome, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[weekKey]
	if !ok {
		return fmt.Errorf("weekly reset %s: %w", weekKey, ErrNotFound)
	}
	r.UsersReset += out.UsersReset
	r.PendingUsers = slices.Clone(out.Pending)
	switch {
	case out.Failed:
		r.Status = models.WeeklyResetFailed
	case len(out.Pending) > 0:
		r.Status = models.WeeklyResetPartial
	default:
		r.Status = models.WeeklyResetDone
		r.CompletedAt = &at
	}
	return nil
}

func (s *MemoryStore) RetryWeeklyReset(ctx context.Context, weekKey string, at time.Time) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[weekKey]
	if !ok {
		return nil, false, nil
	}
	var pending []string
	switch r.Status {
	case models.WeeklyResetPartial:
		pending = slices.Clone(r.PendingUsers)
	case models.WeeklyResetFailed:
	default:
		return nil, false, nil
	}
	r.Status = models.WeeklyResetRunning
	r.Attempts++
	r.StartedAt = at
	return pending, true, nil
}

// WeeklyReset returns a copy of the week's record. For tests.
func (s *MemoryStore) WeeklyReset(weekKey string) (models.WeeklyReset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[weekKey]
	if !ok {
		return models.WeeklyReset{}, false
	}
	cp := *r
	cp.PendingUsers = slices.Clone(r.PendingUsers)
	return cp, true
}

var _ Store = (*MemoryStore)(nil)
