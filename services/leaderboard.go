// services/leaderboard.go - Deterministic ranking of progress snapshots
package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"lifetracker/models"
)

// DefaultLeaderboardLimit is used when a caller passes limit <= 0.
const DefaultLeaderboardLimit = 20

func scopePoints(p *models.UserProgress, scope models.LeaderboardScope) int {
	if scope == models.ScopeWeekly {
		return p.WeeklyPoints
	}
	return p.TotalPoints
}

func compareForRanking(scope models.LeaderboardScope) func(a, b models.UserProgress) int {
	return func(a, b models.UserProgress) int {
		return cmp.Or(
			cmp.Compare(scopePoints(&b, scope), scopePoints(&a, scope)),
			cmp.Compare(b.Level, a.Level),
			a.LastActivity.Compare(b.LastActivity),
			cmp.Compare(a.UserID, b.UserID),
		)
	}
}

// BuildLeaderboard ranks every snapshot, then truncates to limit.
// Points (per scope) desc, level desc, last activity asc, user id asc. The user
// id makes the order total, so ranks are exactly 1..N.
func BuildLeaderboard(snapshots []models.UserProgress, scope models.LeaderboardScope, limit int) []models.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	ranked := rank(snapshots, scope)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func rank(snapshots []models.UserProgress, scope models.LeaderboardScope) []models.LeaderboardEntry {
	sorted := slices.Clone(snapshots)
	slices.SortFunc(sorted, compareForRanking(scope))

	entries := make([]models.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = models.LeaderboardEntry{
			UserID:       p.UserID,
			TotalPoints:  p.TotalPoints,
			WeeklyPoints: p.WeeklyPoints,
			Level:        p.Level,
			Rank:         i + 1,
		}
	}
	return entries
}

// LeaderboardService builds leaderboards from the current progress snapshots.
// Reads are not linearizable across users; a snapshot can trail an in-flight update.
type LeaderboardService struct {
	store    ProgressStore
	maxLimit int
}

func NewLeaderboardService(store ProgressStore, maxLimit int) *LeaderboardService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &LeaderboardService{store: store, maxLimit: maxLimit}
}

func (s *LeaderboardService) Leaderboard(ctx context.Context, scope models.LeaderboardScope, limit int) ([]models.LeaderboardEntry, error) {
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	snapshots, err := s.store.ListProgress(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(snapshots, scope, limit), nil
}

// UserRank returns the user's entry in the full ranking.
func (s *LeaderboardService) UserRank(ctx context.Context, scope models.LeaderboardScope, userID string) (*models.LeaderboardEntry, int, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, 0, err
	}
	snapshots, err := s.store.ListProgress(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range rank(snapshots, scope) {
		if e.UserID == userID {
			return &e, len(snapshots), nil
		}
	}
	return nil, len(snapshots), fmt.Errorf("leaderboard entry for %s: %w", userID, ErrNotFound)
}
