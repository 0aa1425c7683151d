package kv_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/colonyops/briefly/internal/core/kv"
	"github.com/colonyops/briefly/internal/data/db"
	"github.com/colonyops/briefly/internal/data/stores"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestTypedKV_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "test")

	require.NoError(t, typed.Set(ctx, "greeting", "hello"))

	got, err := typed.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestTypedKV_ScopedPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)

	// Two scoped stores with different namespaces
	alpha := kv.Scoped[int](store, "briefing:alice")
	beta := kv.Scoped[int](store, "briefing:bob")

	require.NoError(t, alpha.Set(ctx, "m1", 10))
	require.NoError(t, beta.Set(ctx, "m1", 20))

	// Each scope sees its own value
	a, err := alpha.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 10, a)

	b, err := beta.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 20, b)

	// Namespace listing only surfaces the scope's own keys, unprefixed.
	keys, err := alpha.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, keys)

	all, err := store.ListKeys(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, all, "briefing:alice:m1")
	assert.Contains(t, all, "briefing:bob:m1")
}

func TestTypedKV_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "ns")

	require.NoError(t, typed.Set(ctx, "key", "val"))
	require.NoError(t, typed.Delete(ctx, "key"))

	has, err := typed.Has(ctx, "key")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTypedKV_TTL(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "ttl")

	require.NoError(t, typed.SetTTL(ctx, "temp", "gone", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := typed.Get(ctx, "temp")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTypedKV_StructValue(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)

	type record struct {
		Status string `json:"status"`
		Action string `json:"action,omitempty"`
	}

	typed := kv.Scoped[record](store, "briefing:alice")
	require.NoError(t, typed.Set(ctx, "m1", record{Status: "actioned", Action: "archive"}))

	got, err := typed.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "actioned", got.Status)
	assert.Equal(t, "archive", got.Action)
}
