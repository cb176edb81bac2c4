// Package pricehistory records bonding-curve price snapshots and serves
// them as a per-token time series.
package pricehistory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sames-backend/internal/domain"
	"sames-backend/internal/observability"
	"sames-backend/internal/storage"
)

// MaxListLimit caps how many snapshots a single read returns.
const MaxListLimit = 1000

// Service appends and lists price snapshots. Snapshots carry cumulative
// curve counters and have no uniqueness key: every accepted submission
// becomes a row, including repeats of the same price.
type Service struct {
	snapshots storage.SnapshotStore
}

// NewService creates a price history service.
func NewService(snapshots storage.SnapshotStore) *Service {
	return &Service{snapshots: snapshots}
}

// RecordSnapshot validates and appends a snapshot.
func (s *Service) RecordSnapshot(ctx context.Context, snap *domain.PriceSnapshot) error {
	switch {
	case snap.TokenAddress == "":
		return fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	case snap.PriceLamports < 0 || snap.TokensSold < 0 || snap.SolCollected < 0:
		return fmt.Errorf("%w: counters must be non-negative", storage.ErrInvalidInput)
	}

	if snap.CreatedAt == 0 {
		snap.CreatedAt = time.Now().UnixMilli()
	}

	if err := s.snapshots.Insert(ctx, snap); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	observability.RecordSnapshot()
	log.Debug().
		Str("token", snap.TokenAddress).
		Int64("price_lamports", snap.PriceLamports).
		Msg("price snapshot recorded")

	return nil
}

// ListSnapshots returns snapshots for a token in creation order. limit is
// clamped to MaxListLimit; zero or negative means the maximum.
func (s *Service) ListSnapshots(ctx context.Context, tokenAddress string, limit int) ([]*domain.PriceSnapshot, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	}

	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	snaps, err := s.snapshots.ListByToken(ctx, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}
