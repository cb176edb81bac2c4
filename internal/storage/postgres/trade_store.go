package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert records a trade keyed on tx_sig. The conflict handling lives in the
// statement itself: ON CONFLICT DO NOTHING makes two concurrent submissions of
// the same signature both succeed with exactly one row persisted, without a
// check-then-insert race in application code. The returned boolean is the
// rows-affected count, i.e. whether this call wrote the row.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) (bool, error) {
	if t == nil || t.TxSig == "" || t.TokenAddress == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			token_address, tx_sig, wallet, trade_type, sol_amount, token_amount, price_lamports, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tx_sig) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query,
		t.TokenAddress,
		t.TxSig,
		t.Wallet,
		t.Side,
		t.SolAmount,
		t.TokenAmount,
		t.PriceLamports,
		t.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert trade: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByToken retrieves trades for a token, ordered by creation time ASC.
func (s *TradeStore) ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT id, token_address, tx_sig, wallet, trade_type, sol_amount, token_amount, price_lamports, created_at
		FROM trades
		WHERE token_address = $1
		ORDER BY created_at ASC, id ASC
	`
	args := []any{tokenAddress}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades by token: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		var t domain.Trade

		err := rows.Scan(
			&t.ID,
			&t.TokenAddress,
			&t.TxSig,
			&t.Wallet,
			&t.Side,
			&t.SolAmount,
			&t.TokenAmount,
			&t.PriceLamports,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
