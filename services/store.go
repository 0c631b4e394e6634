// services/store.go - Persistence contracts consumed by the core
package services

import (
	"context"
	"time"

	"lifetracker/models"
)

// Commit is one atomic write of a user's progress document together with the
// rows produced by the same update. ExpectedVersion is the version the
// progress was read at (0 for a record that does not exist yet); stores reject
// the write with ErrConcurrentModification when it no longer matches.
type Commit struct {
	Progress        *models.UserProgress
	ExpectedVersion int64
	Achievements    []models.UserAchievement
	Transaction     *models.PointTransaction
}

// ProgressStore is the keyed progress document store.
type ProgressStore interface {
	// GetProgress returns ErrNotFound when the user has no record yet.
	GetProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	ListProgress(ctx context.Context) ([]models.UserProgress, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	// Commit replaces the whole document; on success Progress.Version is bumped.
	Commit(ctx context.Context, c Commit) error
}

// CatalogStore serves the active game and the published achievement definitions.
type CatalogStore interface {
	// ActiveGame returns ErrNotFound when no game is flagged active.
	ActiveGame(ctx context.Context) (*models.Game, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)
}

// CounterStore serves counters owned by the habit-tracking collaborator.
type CounterStore interface {
	// Counters returns zero counters for users the collaborator never reported.
	Counters(ctx context.Context, userID string) (models.UserCounters, error)
	SetCounters(ctx context.Context, c models.UserCounters) error
}

// HistoryStore serves unlock rows and the point transaction log.
type HistoryStore interface {
	UserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
	Transactions(ctx context.Context, userID string, limit, offset int) ([]models.PointTransaction, error)
	// TransactionStats returns the user's transaction count and the sum of points since.
	TransactionStats(ctx context.Context, userID string, since time.Time) (count int64, pointsSince int, err error)
}

// AdminStore holds the administrative writes of game versions, definitions and resets.
type AdminStore interface {
	CreateGame(ctx context.Context, g *models.Game) error
	ListGames(ctx context.Context) ([]models.Game, error)
	// ActivateGame flags id active and every other game inactive in one step.
	ActivateGame(ctx context.Context, id uint) (*models.Game, error)
	// CreateAchievement returns ErrAlreadyExists for a taken achievement id.
	CreateAchievement(ctx context.Context, a *models.Achievement) error
	WeeklyResetStore
}

// Store is everything the server wires together.
type Store interface {
	ProgressStore
	CatalogStore
	CounterStore
	HistoryStore
	AdminStore
}
