// Package ledger records executed launch-token trades and serves trade
// history.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sames-backend/internal/domain"
	"sames-backend/internal/observability"
	"sames-backend/internal/storage"
)

// MaxListLimit caps how many trades a single read returns.
const MaxListLimit = 500

// Service validates and persists trades and joins trade history with
// wallet profiles.
type Service struct {
	trades   storage.TradeStore
	profiles storage.ProfileStore
}

// NewService creates a ledger service.
func NewService(trades storage.TradeStore, profiles storage.ProfileStore) *Service {
	return &Service{trades: trades, profiles: profiles}
}

// RecordTrade validates and persists a trade. Re-submitting an
// already-recorded transaction signature is not an error: the call
// succeeds and reports duplicate=true, leaving the stored row untouched.
func (s *Service) RecordTrade(ctx context.Context, trade *domain.Trade) (duplicate bool, err error) {
	switch {
	case trade.TokenAddress == "":
		return false, fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	case trade.TxSig == "":
		return false, fmt.Errorf("%w: tx signature is required", storage.ErrInvalidInput)
	case trade.Wallet == "":
		return false, fmt.Errorf("%w: wallet is required", storage.ErrInvalidInput)
	case !trade.Side.Valid():
		return false, fmt.Errorf("%w: side must be buy or sell", storage.ErrInvalidInput)
	case trade.SolAmount < 0 || trade.TokenAmount < 0 || trade.PriceLamports < 0:
		return false, fmt.Errorf("%w: amounts must be non-negative", storage.ErrInvalidInput)
	}

	if trade.CreatedAt == 0 {
		trade.CreatedAt = time.Now().UnixMilli()
	}

	inserted, err := s.trades.Insert(ctx, trade)
	if err != nil {
		return false, fmt.Errorf("insert trade: %w", err)
	}

	duplicate = !inserted
	observability.RecordTrade(duplicate)

	if duplicate {
		log.Debug().
			Str("tx_sig", trade.TxSig).
			Msg("duplicate trade submission skipped")
	} else {
		log.Info().
			Str("token", trade.TokenAddress).
			Str("tx_sig", trade.TxSig).
			Str("side", string(trade.Side)).
			Int64("sol_amount", trade.SolAmount).
			Msg("trade recorded")
	}

	return duplicate, nil
}

// ListTrades returns trades for a token in creation order, each joined
// with the trading wallet's profile when one exists. limit is clamped to
// MaxListLimit; zero or negative means the maximum.
func (s *Service) ListTrades(ctx context.Context, tokenAddress string, limit int) ([]*domain.TradeWithProfile, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("%w: token address is required", storage.ErrInvalidInput)
	}

	limit = clampLimit(limit, MaxListLimit)

	trades, err := s.trades.ListByToken(ctx, tokenAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	profiles, err := s.lookupProfiles(ctx, trades)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.TradeWithProfile, 0, len(trades))
	for _, t := range trades {
		tp := &domain.TradeWithProfile{Trade: *t}
		if p, ok := profiles[t.Wallet]; ok {
			tp.Username = &p.Username
			tp.AvatarURL = &p.AvatarURL
		}
		result = append(result, tp)
	}

	return result, nil
}

func (s *Service) lookupProfiles(ctx context.Context, trades []*domain.Trade) (map[string]*domain.Profile, error) {
	seen := make(map[string]struct{}, len(trades))
	wallets := make([]string, 0, len(trades))
	for _, t := range trades {
		if _, ok := seen[t.Wallet]; ok {
			continue
		}
		seen[t.Wallet] = struct{}{}
		wallets = append(wallets, t.Wallet)
	}

	if len(wallets) == 0 {
		return map[string]*domain.Profile{}, nil
	}

	profiles, err := s.profiles.GetBatch(ctx, wallets)
	if err != nil {
		return nil, fmt.Errorf("batch profiles: %w", err)
	}
	return profiles, nil
}

// clampLimit normalizes a client-supplied limit: non-positive or
// over-the-cap values become the cap.
func clampLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}
