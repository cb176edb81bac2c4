package memory

import (
	"context"
	"sync"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// ProfileStore is an in-memory implementation of storage.ProfileStore.
type ProfileStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Profile // keyed by wallet
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		data: make(map[string]*domain.Profile),
	}
}

// Upsert creates or replaces the profile for a wallet.
func (s *ProfileStore) Upsert(_ context.Context, p *domain.Profile) error {
	if p == nil || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *p
	s.data[p.Wallet] = &copy
	return nil
}

// Get retrieves a profile by wallet. Returns ErrNotFound if not exists.
func (s *ProfileStore) Get(_ context.Context, wallet string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetBatch retrieves profiles for the given wallets. Missing wallets are
// absent from the result.
func (s *ProfileStore) GetBatch(_ context.Context, wallets []string) (map[string]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.Profile, len(wallets))
	for _, wallet := range wallets {
		if p, exists := s.data[wallet]; exists {
			copy := *p
			result[wallet] = &copy
		}
	}

	return result, nil
}

var _ storage.ProfileStore = (*ProfileStore)(nil)
