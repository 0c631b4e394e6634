package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifetracker/models"
)

func TestMemoryStore_CommitChecksVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	p := models.NewUserProgress("u1", zeroTime)
	require.NoError(t, store.Commit(ctx, Commit{Progress: p}))
	assert.Equal(t, int64(1), p.Version)

	// A second create of the same user is a conflict.
	assert.ErrorIs(t, store.Commit(ctx, Commit{Progress: models.NewUserProgress("u1", zeroTime)}), ErrConcurrentModification)

	stale, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	fresh, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)

	fresh.TotalPoints = 10
	require.NoError(t, store.Commit(ctx, Commit{Progress: fresh, ExpectedVersion: fresh.Version}))

	stale.TotalPoints = 99
	assert.ErrorIs(t, store.Commit(ctx, Commit{Progress: stale, ExpectedVersion: stale.Version}), ErrConcurrentModification)

	got, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.TotalPoints)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStore_SnapshotsAreCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, Commit{Progress: models.NewUserProgress("u1", zeroTime)}))

	p, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	p.UnlockedAchievements = append(p.UnlockedAchievements, "sneaky")

	again, err := store.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, again.UnlockedAchievements)
}

func TestMemoryStore_TransactionsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	p := models.NewUserProgress("u1", zeroTime)
	for i, id := range []string{"t1", "t2", "t3"} {
		tx := &models.PointTransaction{ID: id, UserID: "u1", Points: i}
		require.NoError(t, store.Commit(ctx, Commit{Progress: p, ExpectedVersion: p.Version, Transaction: tx}))
	}

	txs, err := store.Transactions(ctx, "u1", 2, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t3", txs[0].ID)
	assert.Equal(t, "t2", txs[1].ID)

	txs, err = store.Transactions(ctx, "u1", 10, 2)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "t1", txs[0].ID)
}
