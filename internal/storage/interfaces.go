package storage

import (
	"context"

	"sames-backend/internal/domain"
)

// TradeStore provides access to the append-only trade ledger.
type TradeStore interface {
	// Insert records a trade keyed on tx_sig. It returns true when a new row
	// was written and false when a row with the same tx_sig already existed.
	// A duplicate is not an error: the insert must be a single atomic
	// conflict-tolerant statement so that two concurrent submissions of the
	// same signature both succeed with exactly one row persisted.
	Insert(ctx context.Context, t *domain.Trade) (bool, error)

	// ListByToken retrieves trades for a token ordered by creation time ASC.
	// A limit <= 0 means no limit.
	ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.Trade, error)
}

// SnapshotStore provides access to the price snapshot time series.
type SnapshotStore interface {
	// Insert appends a snapshot. Snapshots have no uniqueness key.
	Insert(ctx context.Context, s *domain.PriceSnapshot) error

	// ListByToken retrieves snapshots for a token ordered by creation time ASC.
	// A limit <= 0 means no limit.
	ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.PriceSnapshot, error)
}

// ProfileStore provides access to wallet display profiles.
type ProfileStore interface {
	// Upsert creates or replaces the profile for a wallet.
	Upsert(ctx context.Context, p *domain.Profile) error

	// Get retrieves a profile by wallet. Returns ErrNotFound if not exists.
	Get(ctx context.Context, wallet string) (*domain.Profile, error)

	// GetBatch retrieves profiles for the given wallets. Wallets without a
	// profile are absent from the returned map.
	GetBatch(ctx context.Context, wallets []string) (map[string]*domain.Profile, error)
}

// ChatStore provides access to per-token chat streams.
type ChatStore interface {
	// Insert appends a chat message.
	Insert(ctx context.Context, m *domain.ChatMessage) error

	// ListByToken retrieves messages for a token ordered by creation time ASC.
	// A limit <= 0 means no limit.
	ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.ChatMessage, error)
}
