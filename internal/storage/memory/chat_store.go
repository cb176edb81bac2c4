package memory

import (
	"context"
	"sync"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// ChatStore is an in-memory implementation of storage.ChatStore.
type ChatStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.ChatMessage // keyed by token address
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		data: make(map[string][]*domain.ChatMessage),
	}
}

// Insert appends a chat message.
func (s *ChatStore) Insert(_ context.Context, m *domain.ChatMessage) error {
	if m == nil || m.TokenAddress == "" || m.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *m
	s.data[m.TokenAddress] = append(s.data[m.TokenAddress], &copy)
	return nil
}

// ListByToken retrieves messages for a token in insertion order.
func (s *ChatStore) ListByToken(_ context.Context, tokenAddress string, limit int) ([]*domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[tokenAddress]
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	result := make([]*domain.ChatMessage, 0, len(stored))
	for _, m := range stored {
		copy := *m
		result = append(result, &copy)
	}

	return result, nil
}

var _ storage.ChatStore = (*ChatStore)(nil)
