package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifetracker/models"
)

func TestGameService_PublishAndActivate(t *testing.T) {
	store := NewMemoryStore()
	svc := NewGameService(store, nil)
	ctx := context.Background()

	_, err := svc.Active(ctx)
	assert.ErrorIs(t, err, ErrInactiveGame)

	v1 := testGame()
	require.NoError(t, svc.Publish(ctx, &v1))

	v2 := testGame()
	v2.Version = 2
	v2.IsActive = false
	v2.ScoringRules = []models.ScoringRule{{Action: "five", Points: 50}}
	require.NoError(t, svc.Publish(ctx, &v2))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Version)

	// Switching versions changes scoring for later actions only.
	engine := NewProgressEngine(store, nil)
	_, err = engine.ApplyAction(ctx, action("u1", "five"))
	require.NoError(t, err)

	_, err = svc.Activate(ctx, v2.ID)
	require.NoError(t, err)
	_, err = engine.ApplyAction(ctx, action("u1", "five"))
	require.NoError(t, err)

	p, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 55, p.TotalPoints)

	games, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.True(t, games[0].IsActive)
	assert.False(t, games[1].IsActive)

	_, err = svc.Activate(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGameService_PublishRejects(t *testing.T) {
	svc := NewGameService(NewMemoryStore(), nil)
	ctx := context.Background()

	g := testGame()
	g.Version = 0
	assert.ErrorIs(t, svc.Publish(ctx, &g), ErrInvalidGame)

	g = testGame()
	g.Rows = 0
	assert.ErrorIs(t, svc.Publish(ctx, &g), ErrInvalidGame)

	g = testGame()
	require.NoError(t, svc.Publish(ctx, &g))
	dup := testGame()
	assert.ErrorIs(t, svc.Publish(ctx, &dup), ErrAlreadyExists)
}

func TestGameService_Bootstrap(t *testing.T) {
	store := NewMemoryStore()
	svc := NewGameService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, DefaultGame()))
	require.NoError(t, svc.Bootstrap(ctx, DefaultGame()))

	games, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].IsActive)

	// A new version does not steal activation from an existing active game.
	next := DefaultGame()
	next.Version = 2
	require.NoError(t, svc.Bootstrap(ctx, next))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Version)
}

func TestDefaultGameCompiles(t *testing.T) {
	cfg := compile(t, DefaultGame())
	assert.Equal(t, 25, cfg.BoardSize())
	assert.Equal(t, 300, cfg.WeeklyGoalPoints)

	for _, a := range DefaultAchievements() {
		assert.NoError(t, a.Criterion.Validate(), a.AchievementID)
	}
}
