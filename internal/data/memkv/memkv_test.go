package memkv_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/colonyops/briefly/internal/data/memkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	require.NoError(t, store.Set(ctx, "k", map[string]int{"n": 1}))

	var got map[string]int
	require.NoError(t, store.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["n"])
}

func TestStore_MissingKeyMatchesDurableStore(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	var dest string
	err := store.Get(ctx, "missing", &dest)
	// Same sentinel as the SQLite store so callers need no special casing.
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	require.NoError(t, store.SetTTL(ctx, "temp", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	has, err := store.Has(ctx, "temp")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStore_ListKeysPrefixSorted(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	require.NoError(t, store.Set(ctx, "b:2", 1))
	require.NoError(t, store.Set(ctx, "b:1", 1))
	require.NoError(t, store.Set(ctx, "a:1", 1))

	keys, err := store.ListKeys(ctx, "b:")
	require.NoError(t, err)
	assert.Equal(t, []string{"b:1", "b:2"}, keys)
}
