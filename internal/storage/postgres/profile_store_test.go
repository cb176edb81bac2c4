package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

func TestProfileStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProfileStore(pool)

	err := store.Upsert(ctx, &domain.Profile{
		Wallet:    "W1",
		Username:  "alice",
		AvatarURL: "https://cdn/a.png",
		UpdatedAt: 1700000000000,
	})
	require.NoError(t, err)

	p, err := store.Get(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "https://cdn/a.png", p.AvatarURL)
}

func TestProfileStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProfileStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.Profile{Wallet: "W1", Username: "alice", UpdatedAt: 1000}))
	require.NoError(t, store.Upsert(ctx, &domain.Profile{Wallet: "W1", Username: "alice2", AvatarURL: "https://cdn/a2.png", UpdatedAt: 2000}))

	p, err := store.Get(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)
	assert.Equal(t, int64(2000), p.UpdatedAt)
}

func TestProfileStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProfileStore(pool)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProfileStore_GetBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProfileStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.Profile{Wallet: "W1", Username: "alice", UpdatedAt: 1000}))
	require.NoError(t, store.Upsert(ctx, &domain.Profile{Wallet: "W2", Username: "bob", UpdatedAt: 1000}))

	result, err := store.GetBatch(ctx, []string{"W1", "W2", "W3"})
	require.NoError(t, err)

	assert.Len(t, result, 2)
	assert.Equal(t, "alice", result["W1"].Username)
	assert.Equal(t, "bob", result["W2"].Username)
	assert.NotContains(t, result, "W3")
}

func TestProfileStore_GetBatchEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProfileStore(pool)

	result, err := store.GetBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
