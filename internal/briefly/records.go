package briefly

import (
	"context"
	"fmt"
	"sort"

	"github.com/colonyops/briefly/internal/core/kv"
	"github.com/rs/zerolog"
)

// Record pairs an item id with its persisted status projection.
type Record struct {
	ItemID string `json:"item_id"`
	PersistedRecord
}

// RecordService inspects and maintains the durable per-user record keyspace.
// It backs the records and prune commands; sessions never read through it.
type RecordService struct {
	store     kv.KV
	namespace string
	log       zerolog.Logger
}

// NewRecordService creates a record service over the given store.
func NewRecordService(store kv.KV, namespace string, log zerolog.Logger) *RecordService {
	return &RecordService{
		store:     store,
		namespace: namespace,
		log:       log.With().Str("component", "records").Logger(),
	}
}

func (s *RecordService) scoped(userID string) *kv.TypedKV[PersistedRecord] {
	return kv.Scoped[PersistedRecord](s.store, s.namespace+":"+userID)
}

// List returns all live records for a user, sorted by item id.
func (s *RecordService) List(ctx context.Context, userID string) ([]Record, error) {
	scoped := s.scoped(userID)

	ids, err := scoped.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", userID, err)
	}
	sort.Strings(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := scoped.Get(ctx, id)
		if err != nil {
			// Expired between listing and reading; skip.
			s.log.Debug().Err(err).Str("item_id", id).Msg("record vanished during list")
			continue
		}
		records = append(records, Record{ItemID: id, PersistedRecord: rec})
	}

	return records, nil
}

// Get returns one record by item id.
func (s *RecordService) Get(ctx context.Context, userID, itemID string) (Record, error) {
	rec, err := s.scoped(userID).Get(ctx, itemID)
	if err != nil {
		return Record{}, fmt.Errorf("get record %s for %s: %w", itemID, userID, err)
	}
	return Record{ItemID: itemID, PersistedRecord: rec}, nil
}

// Prune deletes every record for a user and returns how many were removed.
func (s *RecordService) Prune(ctx context.Context, userID string) (int, error) {
	scoped := s.scoped(userID)

	ids, err := scoped.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune records for %s: %w", userID, err)
	}

	pruned := 0
	for _, id := range ids {
		if err := scoped.Delete(ctx, id); err != nil {
			return pruned, fmt.Errorf("prune record %s: %w", id, err)
		}
		pruned++
	}

	s.log.Info().Str("user_id", userID).Int("pruned", pruned).Msg("records pruned")
	return pruned, nil
}
