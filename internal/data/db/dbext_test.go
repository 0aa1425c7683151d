package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countKeys(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var count int
	require.NoError(t, conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM kv_store").Scan(&count))
	return count
}

func TestWithTx_Commit(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(tx *sql.Tx) error {
		for _, key := range []string{"briefing:alice:m1", "briefing:alice:m2"} {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO kv_store (key, value, created_at, updated_at) VALUES (?, '{}', 1, 1)", key); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, countKeys(t, database.Conn()))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := database.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO kv_store (key, value, created_at, updated_at) VALUES ('briefing:alice:m1', '{}', 1, 1)"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The insert must not survive the rollback.
	assert.Equal(t, 0, countKeys(t, database.Conn()))
}
