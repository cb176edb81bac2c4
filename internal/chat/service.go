package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sames-backend/internal/domain"
	"sames-backend/internal/observability"
	"sames-backend/internal/storage"
)

// MaxListLimit caps how many messages a single read returns.
const MaxListLimit = 200

// MaxBodyLength bounds a single chat message.
const MaxBodyLength = 500

// Service persists chat messages and pushes them to live subscribers.
type Service struct {
	messages storage.ChatStore
	profiles storage.ProfileStore
	hub      *Hub
}

// NewService creates a chat service. hub may be nil when live fanout is
// not wanted, e.g. in tests.
func NewService(messages storage.ChatStore, profiles storage.ProfileStore, hub *Hub) *Service {
	return &Service{messages: messages, profiles: profiles, hub: hub}
}

// PostMessage validates, stores, and broadcasts a chat message. The stored
// message is returned with its assigned ID and timestamp.
func (s *Service) PostMessage(ctx context.Context, tokenAddress, wallet, body string) (*domain.ChatMessageWithProfile, error) {
	switch {
	case tokenAddress == "":
		return nil, fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	case wallet == "":
		return nil, fmt.Errorf("%w: wallet is required", storage.ErrInvalidInput)
	case body == "":
		return nil, fmt.Errorf("%w: message body is required", storage.ErrInvalidInput)
	case len(body) > MaxBodyLength:
		return nil, fmt.Errorf("%w: message body exceeds %d bytes", storage.ErrInvalidInput, MaxBodyLength)
	}

	msg := &domain.ChatMessage{
		ID:           uuid.NewString(),
		TokenAddress: tokenAddress,
		Wallet:       wallet,
		Body:         body,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}

	observability.RecordChatMessage()
	log.Debug().
		Str("token", tokenAddress).
		Str("wallet", wallet).
		Msg("chat message posted")

	joined := &domain.ChatMessageWithProfile{ChatMessage: *msg}
	if p, err := s.profiles.Get(ctx, wallet); err == nil {
		joined.Username = &p.Username
		joined.AvatarURL = &p.AvatarURL
	}

	if s.hub != nil {
		s.hub.Broadcast(joined)
	}

	return joined, nil
}

// ListMessages returns messages for a token in creation order, joined with
// sender profiles. limit is clamped to MaxListLimit; zero or negative
// means the maximum.
func (s *Service) ListMessages(ctx context.Context, tokenAddress string, limit int) ([]*domain.ChatMessageWithProfile, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	}

	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	msgs, err := s.messages.ListByToken(ctx, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}

	seen := make(map[string]struct{}, len(msgs))
	wallets := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.Wallet]; ok {
			continue
		}
		seen[m.Wallet] = struct{}{}
		wallets = append(wallets, m.Wallet)
	}

	profiles := map[string]*domain.Profile{}
	if len(wallets) > 0 {
		profiles, err = s.profiles.GetBatch(ctx, wallets)
		if err != nil {
			return nil, fmt.Errorf("batch profiles: %w", err)
		}
	}

	result := make([]*domain.ChatMessageWithProfile, 0, len(msgs))
	for _, m := range msgs {
		mp := &domain.ChatMessageWithProfile{ChatMessage: *m}
		if p, ok := profiles[m.Wallet]; ok {
			mp.Username = &p.Username
			mp.AvatarURL = &p.AvatarURL
		}
		result = append(result, mp)
	}

	return result, nil
}
