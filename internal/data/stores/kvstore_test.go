package stores_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/colonyops/briefly/internal/data/db"
	"github.com/colonyops/briefly/internal/data/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *stores.KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestKVStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var dest string
	err := store.Get(ctx, "missing", &dest)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestKVStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", "first"))
	require.NoError(t, store.Set(ctx, "k", "second"))

	var got string
	require.NoError(t, store.Get(ctx, "k", &got))
	assert.Equal(t, "second", got)
}

func TestKVStore_SetTTLExpires(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetTTL(ctx, "short", "v", time.Millisecond))
	require.NoError(t, store.Set(ctx, "forever", "v"))
	time.Sleep(5 * time.Millisecond)

	has, err := store.Has(ctx, "short")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.Has(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestKVStore_ListKeysPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "briefing:alice:m1", 1))
	require.NoError(t, store.Set(ctx, "briefing:alice:m2", 1))
	require.NoError(t, store.Set(ctx, "briefing:bob:m1", 1))

	keys, err := store.ListKeys(ctx, "briefing:alice:")
	require.NoError(t, err)
	assert.Equal(t, []string{"briefing:alice:m1", "briefing:alice:m2"}, keys)
}

func TestKVStore_ListKeysEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Set(ctx, "a_b:k", 1))
	require.NoError(t, store.Set(ctx, "axb:k", 1))

	keys, err := store.ListKeys(ctx, "a_b:")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b:k"}, keys)
}

func TestKVStore_GetRaw(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetTTL(ctx, "k", map[string]string{"status": "briefed"}, time.Hour))

	entry, err := store.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "k", entry.Key)
	assert.JSONEq(t, `{"status":"briefed"}`, string(entry.Value))
	require.NotNil(t, entry.ExpiresAt)
	assert.True(t, entry.ExpiresAt.After(time.Now()))
}

func TestKVStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SetTTL(ctx, "old", "v", time.Millisecond))
	require.NoError(t, store.Set(ctx, "keep", "v"))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, store.SweepExpired(ctx))

	keys, err := store.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, keys)
}
