// Package sweep removes expired briefing records in the background.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/briefly/internal/data/stores"
)

// Start launches a background loop that periodically sweeps expired KV
// entries so records past their retention window do not accumulate.
// It blocks until the context is cancelled.
func Start(ctx context.Context, kvStore *stores.KVStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := kvStore.SweepExpired(ctx)
			switch {
			case err == nil:
			case stores.IsBusyError(err):
				// Contention with a live write; the next tick retries.
				log.Debug().Msg("kv sweep skipped, store busy")
			default:
				log.Warn().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
