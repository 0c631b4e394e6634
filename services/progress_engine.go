// services/progress_engine.go - Applies scored actions to user progress
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifetracker/logger"
	"lifetracker/metrics"
	"lifetracker/models"
)

// DefaultMaxAttempts bounds how often a critical section is re-run after an
// optimistic-lock conflict before ErrConcurrentModification is surfaced.
const DefaultMaxAttempts = 5

// ProgressDelta is what one applied action changed.
type ProgressDelta struct {
	PointsAwarded        int                `json:"pointsAwarded"`
	NewPosition          int                `json:"newPosition"`
	CrossedMilestones    []models.Milestone `json:"crossedMilestones"`
	LeveledUp            bool               `json:"leveledUp"`
	NewLevel             int                `json:"newLevel"`
	UnlockedAchievements []string           `json:"unlockedAchievements"`
}

// ProgressView is the progress read model.
type ProgressView struct {
	models.UserProgress
	PointsToNextLevel int   `json:"pointsToNextLevel"`
	HasProfile        bool  `json:"hasProfile"`
	WeeklyGoalPoints  int   `json:"weeklyGoalPoints"`
	WeeklyGoalReached bool  `json:"weeklyGoalReached"`
	TodayPoints       int   `json:"todayPoints"`
	TotalTransactions int64 `json:"totalTransactions"`
}

// EngineStore is the subset of Store the engine reads and writes.
type EngineStore interface {
	ProgressStore
	CatalogStore
	CounterStore
	HistoryStore
}

// ProgressEngine owns every mutation of UserProgress. At most one mutation per
// user is in flight; different users proceed in parallel.
type ProgressEngine struct {
	store   EngineStore
	scorer  *ScoringEngine
	locks   *UserLocks
	emitter Emitter
	log     *logger.Logger
	now     func() time.Time

	maxAttempts      int
	resetParallelism int

	configs sync.Map // game id -> *GameConfig
}

type EngineOption func(*ProgressEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *ProgressEngine) { e.now = now }
}

func WithEmitter(em Emitter) EngineOption {
	return func(e *ProgressEngine) { e.emitter = em }
}

func WithMaxAttempts(n int) EngineOption {
	return func(e *ProgressEngine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithResetParallelism(n int) EngineOption {
	return func(e *ProgressEngine) {
		if n > 0 {
			e.resetParallelism = n
		}
	}
}

func NewProgressEngine(store EngineStore, log *logger.Logger, opts ...EngineOption) *ProgressEngine {
	if log == nil {
		log = logger.Nop()
	}
	e := &ProgressEngine{
		store:            store,
		scorer:           NewScoringEngine(log),
		locks:            NewUserLocks(),
		emitter:          NopEmitter{},
		log:              log.With("component", "progress_engine"),
		now:              func() time.Time { return time.Now().UTC() },
		maxAttempts:      DefaultMaxAttempts,
		resetParallelism: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ActiveConfig loads the active game. Compiled versions are cached by id since
// a published version never changes.
func (e *ProgressEngine) ActiveConfig(ctx context.Context) (*GameConfig, error) {
	g, err := e.store.ActiveGame(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInactiveGame
	}
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		return nil, ErrInactiveGame
	}
	if cached, ok := e.configs.Load(g.ID); ok {
		cfg := cached.(*GameConfig)
		if cfg.Version == g.Version {
			return cfg, nil
		}
	}
	cfg, err := CompileGame(*g)
	if err != nil {
		return nil, err
	}
	e.configs.Store(g.ID, cfg)
	return cfg, nil
}

// ValidateActionEvent checks the inbound event shape. Location is only range-checked.
func ValidateActionEvent(ev models.ActionEvent) error {
	if err := ValidateUserID(ev.UserID); err != nil {
		return err
	}
	if strings.TrimSpace(ev.Action) == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidAction)
	}
	if ev.Metadata != nil && ev.Metadata.Location != nil {
		loc := ev.Metadata.Location
		if math.IsNaN(loc.Lat) || loc.Lat < -90 || loc.Lat > 90 {
			return fmt.Errorf("%w: latitude %v out of range", ErrInvalidAction, loc.Lat)
		}
		if math.IsNaN(loc.Lng) || loc.Lng < -180 || loc.Lng > 180 {
			return fmt.Errorf("%w: longitude %v out of range", ErrInvalidAction, loc.Lng)
		}
	}
	return nil
}

// ApplyAction scores ev and applies it to the user's progress.
//
// Cancelling ctx before the user's lock is acquired has no effect on state.
// Once inside the critical section the update runs to completion: it either
// commits as one atomic replace or leaves the stored record untouched.
func (e *ProgressEngine) ApplyAction(ctx context.Context, ev models.ActionEvent) (*ProgressDelta, error) {
	if err := ValidateActionEvent(ev); err != nil {
		metrics.RecordAction("rejected")
		return nil, err
	}
	cfg, err := e.ActiveConfig(ctx)
	if err != nil {
		metrics.RecordAction("rejected")
		return nil, err
	}
	catalog, err := e.store.Achievements(ctx)
	if err != nil {
		metrics.RecordAction("error")
		return nil, err
	}
	counters, err := e.store.Counters(ctx, ev.UserID)
	if err != nil {
		metrics.RecordAction("error")
		return nil, err
	}
	points := e.scorer.Score(ev.Action, cfg)

	unlock, err := e.locks.Lock(ctx, ev.UserID)
	if err != nil {
		metrics.RecordAction("cancelled")
		return nil, err
	}
	delta, at, err := e.applyLocked(context.WithoutCancel(ctx), unlock, ev, points, cfg, catalog, CountersFrom(counters))
	if err != nil {
		metrics.RecordAction("error")
		e.log.Error("apply action failed", "user_id", ev.UserID, "action", ev.Action, "error", err)
		return nil, err
	}
	if points == 0 {
		metrics.RecordAction("zero")
	} else {
		metrics.RecordAction("applied")
	}
	e.emit(ctx, eventsFor(ev, delta, at))
	return delta, nil
}

// applyLocked owns the user's lock and releases it even if the update panics.
func (e *ProgressEngine) applyLocked(ctx context.Context, unlock func(), ev models.ActionEvent, points int, cfg *GameConfig, catalog []models.Achievement, counters ExternalCounters) (*ProgressDelta, time.Time, error) {
	defer unlock()
	start := time.Now()
	defer func() { metrics.ObserveCriticalSection("apply", time.Since(start)) }()
	return e.applyWithRetry(ctx, ev, points, cfg, catalog, counters)
}

func (e *ProgressEngine) applyWithRetry(ctx context.Context, ev models.ActionEvent, points int, cfg *GameConfig, catalog []models.Achievement, counters ExternalCounters) (*ProgressDelta, time.Time, error) {
	for attempt := 1; ; attempt++ {
		delta, at, err := e.applyOnce(ctx, ev, points, cfg, catalog, counters)
		if err == nil {
			return delta, at, nil
		}
		if !errors.Is(err, ErrConcurrentModification) || attempt >= e.maxAttempts {
			return nil, at, err
		}
		metrics.RecordConflictRetry()
		e.log.Warn("progress conflict, retrying", "user_id", ev.UserID, "attempt", attempt)
	}
}

func (e *ProgressEngine) applyOnce(ctx context.Context, ev models.ActionEvent, points int, cfg *GameConfig, catalog []models.Achievement, counters ExternalCounters) (*ProgressDelta, time.Time, error) {
	now := e.now()
	p, err := e.store.GetProgress(ctx, ev.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = models.NewUserProgress(ev.UserID, now)
	case err != nil:
		return nil, now, err
	}
	expected := p.Version
	oldLevel := p.Level

	delta := &ProgressDelta{
		PointsAwarded:        points,
		NewPosition:          p.CurrentPosition,
		CrossedMilestones:    []models.Milestone{},
		NewLevel:             p.Level,
		UnlockedAchievements: []string{},
	}
	p.LastActivity = now

	commit := Commit{
		Progress:        p,
		ExpectedVersion: expected,
		Transaction:     newTransaction(ev, points, cfg, now),
	}

	if points != 0 {
		p.TotalPoints = addPoints(p.TotalPoints, points)
		p.WeeklyPoints = addPoints(p.WeeklyPoints, points)
		p.Experience = addPoints(p.Experience, points)

		// Position moves by the awarded points, not by the clamped totals.
		crossed := CrossedMilestones(p.CurrentPosition, points, cfg, p)
		p.CurrentPosition = Advance(p.CurrentPosition, points, cfg.BoardSize())
		for _, m := range crossed {
			p.CompletedMilestones = append(p.CompletedMilestones, m.Tile)
		}

		p.Level = cfg.Curve().Advance(p.Level, p.Experience)

		unlocked := Evaluate(p, catalog, counters)
		for _, def := range unlocked {
			p.UnlockedAchievements = append(p.UnlockedAchievements, def.AchievementID)
			delta.UnlockedAchievements = append(delta.UnlockedAchievements, def.AchievementID)
		}
		commit.Achievements = UnlockRows(p.UserID, unlocked, now)

		delta.NewPosition = p.CurrentPosition
		delta.CrossedMilestones = crossed
		delta.NewLevel = p.Level
		delta.LeveledUp = p.Level > oldLevel
	}

	if err := e.store.Commit(ctx, commit); err != nil {
		return nil, now, err
	}

	metrics.RecordPoints(points)
	metrics.RecordMilestones(len(delta.CrossedMilestones))
	if delta.LeveledUp {
		metrics.RecordLevelUps(delta.NewLevel - oldLevel)
	}
	for _, id := range delta.UnlockedAchievements {
		metrics.RecordAchievementUnlocked(id)
	}
	return delta, now, nil
}

// addPoints adds points to a non-negative total, clamping at 0 and saturating
// at math.MaxInt.
func addPoints(total, points int) int {
	if points > 0 && total > math.MaxInt-points {
		return math.MaxInt
	}
	return max(0, total+points)
}

func newTransaction(ev models.ActionEvent, points int, cfg *GameConfig, now time.Time) *models.PointTransaction {
	meta := map[string]interface{}{}
	if !ev.Timestamp.IsZero() {
		meta["occurredAt"] = ev.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if ev.Metadata != nil && ev.Metadata.Location != nil {
		meta["location"] = map[string]interface{}{
			"lat": ev.Metadata.Location.Lat,
			"lng": ev.Metadata.Location.Lng,
		}
	}
	return &models.PointTransaction{
		ID:          uuid.NewString(),
		UserID:      ev.UserID,
		Action:      ev.Action,
		Points:      points,
		GameVersion: cfg.Version,
		Metadata:    meta,
		CreatedAt:   now,
	}
}

// ReadProgress returns the user's progress plus derived fields. Users without
// a record get the zero profile.
func (e *ProgressEngine) ReadProgress(ctx context.Context, userID string) (*ProgressView, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	now := e.now()
	view := &ProgressView{HasProfile: true}

	p, err := e.store.GetProgress(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = models.NewUserProgress(userID, time.Time{})
		view.HasProfile = false
	case err != nil:
		return nil, err
	}
	view.UserProgress = *p

	var curve LevelCurve
	cfg, err := e.ActiveConfig(ctx)
	switch {
	case err == nil:
		curve = cfg.Curve()
		view.WeeklyGoalPoints = cfg.WeeklyGoalPoints
		view.WeeklyGoalReached = cfg.WeeklyGoalPoints > 0 && p.WeeklyPoints >= cfg.WeeklyGoalPoints
	case !errors.Is(err, ErrInactiveGame):
		return nil, err
	}
	view.PointsToNextLevel = curve.PointsToNextLevel(p.Level, p.Experience)

	if view.HasProfile {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		count, today, err := e.store.TransactionStats(ctx, userID, startOfDay)
		if err != nil {
			return nil, err
		}
		view.TotalTransactions = count
		view.TodayPoints = today
	}
	return view, nil
}

func (e *ProgressEngine) emit(ctx context.Context, events []ProgressEvent) {
	for _, ev := range events {
		if err := e.emitter.Emit(context.WithoutCancel(ctx), ev); err != nil {
			e.log.Warn("emit progress event failed", "user_id", ev.UserID, "type", ev.Type, "error", err)
		}
	}
}
