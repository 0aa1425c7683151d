package briefly

import (
	"context"
	"sync"
	"time"

	"github.com/colonyops/briefly/internal/core/briefing"
	"github.com/colonyops/briefly/internal/core/kv"
	"github.com/rs/zerolog"
)

// PersistedRecord is the durable projection of an ItemState. Topic and item
// indices are dropped; a future session recomputes them from its own registry.
type PersistedRecord struct {
	Status    briefing.Status `json:"status"`
	Action    string          `json:"action,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type persistJob struct {
	itemID string
	record PersistedRecord
}

// Persister writes status records to the durable store off the critical path.
// Incremental writes are fire-and-forget through a buffered queue; Flush is
// the awaited safety net covering any that were dropped or failed.
type Persister struct {
	records *kv.TypedKV[PersistedRecord]
	ttl     time.Duration
	queue   chan persistJob
	log     zerolog.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPersister creates a persister writing into the "{namespace}:{userID}"
// keyspace with the given retention. The background worker starts immediately.
func NewPersister(store kv.KV, namespace, userID string, retentionDays, queueSize int, log zerolog.Logger) *Persister {
	p := &Persister{
		records: kv.Scoped[PersistedRecord](store, namespace+":"+userID),
		ttl:     time.Duration(retentionDays) * 24 * time.Hour,
		queue:   make(chan persistJob, queueSize),
		log:     log.With().Str("component", "persister").Logger(),
	}

	p.wg.Add(1)
	go p.worker()

	return p
}

// Enqueue queues one record write. It never blocks and never fails into the
// caller: a full queue drops the write with a warning, leaving it to Flush.
func (p *Persister) Enqueue(itemID string, record PersistedRecord) {
	select {
	case p.queue <- persistJob{itemID: itemID, record: record}:
	default:
		p.log.Warn().Str("item_id", itemID).Msg("persist queue full, write deferred to flush")
	}
}

func (p *Persister) worker() {
	defer p.wg.Done()

	for job := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.records.SetTTL(ctx, job.itemID, job.record, p.ttl)
		cancel()
		if err != nil {
			p.log.Error().Err(err).Str("item_id", job.itemID).Msg("incremental persist failed")
		}
	}
}

// Flush writes every non-pending state in one awaited batch. It returns the
// number of records written and the first error encountered; remaining
// records are still attempted after an error.
func (p *Persister) Flush(ctx context.Context, states []briefing.ItemState) (int, error) {
	var (
		written  int
		firstErr error
	)

	for _, state := range states {
		if state.Status == briefing.StatusPending {
			continue
		}
		if err := p.records.SetTTL(ctx, state.ItemID, RecordFromState(state), p.ttl); err != nil {
			p.log.Error().Err(err).Str("item_id", state.ItemID).Msg("flush write failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		written++
	}

	return written, firstErr
}

// Close stops the worker after draining the queue. Call Flush first for
// durability; Close only guarantees the queue goroutine exits.
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// RecordFromState projects an ItemState onto its persisted form.
func RecordFromState(state briefing.ItemState) PersistedRecord {
	rec := PersistedRecord{
		Status:    state.Status,
		Action:    state.ActionTaken,
		Timestamp: time.Now(),
	}
	switch {
	case state.ActionedAt != nil:
		rec.Timestamp = *state.ActionedAt
	case state.BriefedAt != nil:
		rec.Timestamp = *state.BriefedAt
	}
	return rec
}
