package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifetracker/models"
)

func TestAchievementService_InitializeDefaultsIdempotent(t *testing.T) {
	svc := NewAchievementService(NewMemoryStore(), nil)
	ctx := context.Background()

	created, err := svc.InitializeDefaults(ctx)
	require.NoError(t, err)
	assert.Len(t, created, len(DefaultAchievements()))

	created, err = svc.InitializeDefaults(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 7)
}

func TestAchievementService_Publish(t *testing.T) {
	svc := NewAchievementService(NewMemoryStore(), nil)
	ctx := context.Background()

	err := svc.Publish(ctx, &models.Achievement{
		AchievementID: "  night_owl ",
		Name:          "Night Owl",
		Criterion:     models.Criterion{Kind: models.CriterionRoutineCount, Threshold: 3},
	})
	require.NoError(t, err)

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "night_owl", catalog[0].AchievementID)

	err = svc.Publish(ctx, &models.Achievement{
		AchievementID: "night_owl",
		Name:          "Again",
		Criterion:     models.Criterion{Kind: models.CriterionPoints, Threshold: 1},
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	bad := []models.Achievement{
		{AchievementID: "has space", Name: "x", Criterion: models.Criterion{Kind: models.CriterionPoints}},
		{AchievementID: "no_name", Criterion: models.Criterion{Kind: models.CriterionPoints}},
		{AchievementID: "bad_kind", Name: "x", Criterion: models.Criterion{Kind: "LOGINS"}},
		{AchievementID: "negative", Name: "x", Criterion: models.Criterion{Kind: models.CriterionStreak, Threshold: -1}},
	}
	for _, a := range bad {
		a := a
		assert.ErrorIs(t, svc.Publish(ctx, &a), ErrInvalidAction, a.AchievementID)
	}
}

func TestAchievementService_UserAchievements(t *testing.T) {
	store := seededStore(t, testGame(),
		def("points_5", models.CriterionPoints, 5),
		def("points_50", models.CriterionPoints, 50),
	)
	f := newEngineFixture(t, store)
	ctx := context.Background()
	_, err := f.engine.ApplyAction(ctx, action("u1", "five"))
	require.NoError(t, err)

	svc := NewAchievementService(store, nil)
	view, err := svc.UserAchievements(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalCount)
	assert.Equal(t, 1, view.UnlockedCount)

	byID := map[string]AchievementStatus{}
	for _, st := range view.Achievements {
		byID[st.AchievementID] = st
	}
	assert.True(t, byID["points_5"].Unlocked)
	require.NotNil(t, byID["points_5"].UnlockedAt)
	assert.Equal(t, f.clock.Now(), *byID["points_5"].UnlockedAt)
	assert.False(t, byID["points_50"].Unlocked)
	assert.Nil(t, byID["points_50"].UnlockedAt)

	_, err = svc.UserAchievements(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidUser)
}
