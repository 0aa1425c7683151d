// Package memkv provides an in-memory kv.KV used when the durable store
// cannot be opened. Session correctness never depends on durability, so the
// service degrades to this store, logs the condition, and carries on.
package memkv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/colonyops/briefly/internal/core/kv"
	genkv "github.com/colonyops/briefly/pkg/kv"
)

type entry struct {
	value     []byte
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// Store is a non-durable kv.KV backed by a generic in-memory map.
type Store struct {
	data *genkv.Store[string, entry]
}

var _ kv.KV = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: genkv.New[string, entry]()}
}

// Get retrieves and deserializes a value by key. Missing and expired keys
// return an error wrapping sql.ErrNoRows, matching the durable store.
func (s *Store) Get(_ context.Context, key string, dest any) error {
	e, ok := s.live(key)
	if !ok {
		return fmt.Errorf("memkv get %q: %w", key, sql.ErrNoRows)
	}
	if err := json.Unmarshal(e.value, dest); err != nil {
		return fmt.Errorf("memkv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores a value with no expiry.
func (s *Store) Set(_ context.Context, key string, value any) error {
	return s.set(key, value, nil)
}

// SetTTL stores a value that expires after the given duration.
func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	return s.set(key, value, &expires)
}

// Delete removes a key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

// Has returns whether a key exists and is not expired.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.live(key)
	return ok, nil
}

// ListKeys returns all non-expired keys with the given prefix in sorted order.
func (s *Store) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for _, key := range s.data.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, ok := s.live(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// GetRaw retrieves a raw entry with metadata.
func (s *Store) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	e, ok := s.live(key)
	if !ok {
		return kv.Entry{}, fmt.Errorf("memkv get raw %q: %w", key, sql.ErrNoRows)
	}
	return kv.Entry{
		Key:       key,
		Value:     json.RawMessage(e.value),
		ExpiresAt: e.expiresAt,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}, nil
}

func (s *Store) set(key string, value any, expiresAt *time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memkv set %q marshal: %w", key, err)
	}
	now := time.Now()
	created := now
	if prev, ok := s.data.Get(key); ok {
		created = prev.createdAt
	}
	s.data.Set(key, entry{value: data, expiresAt: expiresAt, createdAt: created, updatedAt: now})
	return nil
}

// live returns the entry for key, lazily dropping it when expired.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.data.Get(key)
	if !ok {
		return entry{}, false
	}
	if e.expiresAt != nil && e.expiresAt.Before(time.Now()) {
		s.data.Delete(key)
		return entry{}, false
	}
	return e, true
}
