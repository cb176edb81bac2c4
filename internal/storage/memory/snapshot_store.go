package memory

import (
	"context"
	"sync"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// Snapshots are kept in insertion order per token; there is no dedup key.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceSnapshot // keyed by token address
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string][]*domain.PriceSnapshot),
	}
}

// Insert appends a snapshot.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *snap
	s.data[snap.TokenAddress] = append(s.data[snap.TokenAddress], &copy)
	return nil
}

// ListByToken retrieves snapshots for a token in insertion order.
func (s *SnapshotStore) ListByToken(_ context.Context, tokenAddress string, limit int) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[tokenAddress]
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	result := make([]*domain.PriceSnapshot, 0, len(stored))
	for _, snap := range stored {
		copy := *snap
		result = append(result, &copy)
	}

	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
