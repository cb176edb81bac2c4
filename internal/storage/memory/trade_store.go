package memory

import (
	"context"
	"sort"
	"sync"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by tx_sig
	seq  int64
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert records a trade keyed on tx_sig. The existing row wins on conflict,
// mirroring ON CONFLICT DO NOTHING semantics.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) (bool, error) {
	if t == nil || t.TxSig == "" || t.TokenAddress == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TxSig]; exists {
		return false, nil
	}

	s.seq++
	copy := *t
	copy.ID = s.seq
	s.data[t.TxSig] = &copy
	return true, nil
}

// ListByToken retrieves trades for a token ordered by creation time ASC.
func (s *TradeStore) ListByToken(_ context.Context, tokenAddress string, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.TokenAddress == tokenAddress {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
