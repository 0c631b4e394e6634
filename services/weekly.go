// services/weekly.go - Weekly points reset and its scheduler
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"lifetracker/logger"
	"lifetracker/metrics"
)

// DefaultWeeklyResetSchedule fires at 00:00 UTC every Monday.
const DefaultWeeklyResetSchedule = "0 0 * * 1"

// WeekKey names the ISO week t falls in, e.g. "2026-W42".
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ResetWeekly zeroes weeklyPoints for every user and returns how many records
// changed. Each user is reset under that user's lock, so a reset never
// interleaves with an action on the same user. Users are processed in parallel
// and a failure for one user does not stop the others.
func (e *ProgressEngine) ResetWeekly(ctx context.Context) (int, error) {
	ids, err := e.store.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	return e.ResetUsers(ctx, ids)
}

// ResetFailure lists the users a weekly reset could not process.
type ResetFailure struct {
	UserIDs []string
	Err     error
}

func (f *ResetFailure) Error() string {
	return fmt.Sprintf("weekly reset failed for %d users: %v", len(f.UserIDs), f.Err)
}

func (f *ResetFailure) Unwrap() error { return f.Err }

// ResetUsers zeroes weeklyPoints for ids only. When some users fail the error
// is a *ResetFailure naming them, sorted.
func (e *ProgressEngine) ResetUsers(ctx context.Context, ids []string) (int, error) {
	var (
		g      errgroup.Group
		reset  atomic.Int64
		mu     sync.Mutex
		failed []string
		errs   []error
	)
	g.SetLimit(e.resetParallelism)
	for _, id := range ids {
		g.Go(func() error {
			changed, err := e.resetUser(ctx, id)
			if err != nil {
				mu.Lock()
				failed = append(failed, id)
				errs = append(errs, fmt.Errorf("reset %s: %w", id, err))
				mu.Unlock()
				return nil
			}
			if changed {
				reset.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(reset.Load())
	metrics.RecordWeeklyReset(n)
	if len(failed) > 0 {
		slices.Sort(failed)
		e.log.Error("weekly reset incomplete", "users_reset", n, "failures", len(failed))
		return n, &ResetFailure{UserIDs: failed, Err: errors.Join(errs...)}
	}
	e.log.Info("weekly reset complete", "users_reset", n, "users_total", len(ids))
	return n, nil
}

func (e *ProgressEngine) resetUser(ctx context.Context, userID string) (bool, error) {
	unlock, err := e.locks.Lock(ctx, userID)
	if err != nil {
		return false, err
	}
	changed, err := func() (bool, error) {
		defer unlock()
		start := time.Now()
		defer func() { metrics.ObserveCriticalSection("weekly_reset", time.Since(start)) }()
		return e.resetWithRetry(context.WithoutCancel(ctx), userID)
	}()
	if changed {
		e.emit(ctx, []ProgressEvent{{Type: EventWeeklyReset, UserID: userID, OccurredAt: e.now()}})
	}
	return changed, err
}

func (e *ProgressEngine) resetWithRetry(ctx context.Context, userID string) (bool, error) {
	for attempt := 1; ; attempt++ {
		p, err := e.store.GetProgress(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if p.WeeklyPoints == 0 {
			return false, nil
		}
		expected := p.Version
		p.WeeklyPoints = 0
		err = e.store.Commit(ctx, Commit{Progress: p, ExpectedVersion: expected})
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrConcurrentModification) || attempt >= e.maxAttempts {
			return false, err
		}
		metrics.RecordConflictRetry()
	}
}

// WeeklyResetOutcome is what one pass of the reset reports back to the store.
type WeeklyResetOutcome struct {
	UsersReset int
	// Pending are users whose reset failed and is still owed.
	Pending []string
	// Failed means the pass reset nobody and the week needs a full pass.
	Failed bool
}

// WeeklyResetStore is what the job needs to claim a week exactly once.
type WeeklyResetStore interface {
	// ClaimWeeklyReset records weekKey; it returns false if it was already claimed.
	ClaimWeeklyReset(ctx context.Context, weekKey string, at time.Time) (bool, error)
	// FinishWeeklyReset adds out.UsersReset to the week and marks it done, or
	// leaves it open for a retry when out has pending users or failed.
	FinishWeeklyReset(ctx context.Context, weekKey string, out WeeklyResetOutcome, at time.Time) error
	// RetryWeeklyReset takes an open week for another pass. ok is false when the
	// week is unclaimed, running, done, or another caller took it first. A nil
	// pending with ok asks for a full pass.
	RetryWeeklyReset(ctx context.Context, weekKey string, at time.Time) (pending []string, ok bool, err error)
}

// DefaultWeeklyRetryInterval is how often an open week is retried.
const DefaultWeeklyRetryInterval = 15 * time.Minute

// WeeklyResetJob runs ResetWeekly on a cron schedule. A week is claimed in the
// store before resetting, so replicas or restarts never reset the same week twice.
// Users whose reset failed stay pending on the week and are retried on their own.
type WeeklyResetJob struct {
	engine     *ProgressEngine
	store      WeeklyResetStore
	log        *logger.Logger
	now        func() time.Time
	retryEvery time.Duration

	cron *cron.Cron
}

func NewWeeklyResetJob(engine *ProgressEngine, store WeeklyResetStore, log *logger.Logger) *WeeklyResetJob {
	if log == nil {
		log = logger.Nop()
	}
	return &WeeklyResetJob{
		engine:     engine,
		store:      store,
		log:        log.With("component", "weekly_reset"),
		now:        engine.now,
		retryEvery: DefaultWeeklyRetryInterval,
		cron:       cron.New(cron.WithLocation(time.UTC)),
	}
}

// Schedule registers the job with a standard five-field cron expression, plus
// a retry tick for weeks left open by failed users.
func (j *WeeklyResetJob) Schedule(expr string) error {
	if expr == "" {
		expr = DefaultWeeklyResetSchedule
	}
	_, err := j.cron.AddFunc(expr, func() {
		if _, _, err := j.Run(context.Background()); err != nil {
			j.log.Error("scheduled weekly reset failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("weekly reset schedule %q: %w", expr, err)
	}
	_, err = j.cron.AddFunc("@every "+j.retryEvery.String(), func() {
		if _, _, err := j.Retry(context.Background()); err != nil {
			j.log.Error("weekly reset retry failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("weekly reset retry every %s: %w", j.retryEvery, err)
	}
	j.log.Info("weekly reset scheduled", "schedule", expr, "retry_every", j.retryEvery.String())
	return nil
}

func (j *WeeklyResetJob) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for a running reset to finish.
func (j *WeeklyResetJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run resets the current week if no one has claimed it yet, or retries the
// users it still owes. It reports whether this call did any resetting and how
// many users changed.
func (j *WeeklyResetJob) Run(ctx context.Context) (bool, int, error) {
	now := j.now()
	key := WeekKey(now)
	claimed, err := j.store.ClaimWeeklyReset(ctx, key, now)
	if err != nil {
		return false, 0, err
	}
	if !claimed {
		return j.Retry(ctx)
	}
	n, err := j.pass(ctx, key, nil)
	return true, n, err
}

// Retry runs another pass over the current week if it was left open. It never
// starts a week that has not been claimed.
func (j *WeeklyResetJob) Retry(ctx context.Context) (bool, int, error) {
	now := j.now()
	key := WeekKey(now)
	pending, ok, err := j.store.RetryWeeklyReset(ctx, key, now)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		j.log.Debug("no weekly reset to retry", "week", key)
		return false, 0, nil
	}
	j.log.Info("retrying weekly reset", "week", key, "pending", len(pending))
	n, err := j.pass(ctx, key, pending)
	return true, n, err
}

// pass resets ids, or everyone when ids is nil, and records the outcome.
func (j *WeeklyResetJob) pass(ctx context.Context, key string, ids []string) (int, error) {
	var (
		n        int
		resetErr error
	)
	if ids == nil {
		n, resetErr = j.engine.ResetWeekly(ctx)
	} else {
		n, resetErr = j.engine.ResetUsers(ctx, ids)
	}

	out := WeeklyResetOutcome{UsersReset: n}
	var failure *ResetFailure
	switch {
	case errors.As(resetErr, &failure):
		out.Pending = failure.UserIDs
	case resetErr != nil:
		out.Failed = true
	}
	if err := j.store.FinishWeeklyReset(context.WithoutCancel(ctx), key, out, j.now()); err != nil {
		return n, errors.Join(resetErr, err)
	}
	return n, resetErr
}
