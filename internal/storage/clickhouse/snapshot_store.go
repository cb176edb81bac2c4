package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
// price_snapshots is a MergeTree with no uniqueness constraint, which matches
// the data model: every snapshot is an independent additive observation.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert appends a snapshot.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.PriceSnapshot) error {
	if snap == nil || snap.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO price_snapshots (
			token_address, price_lamports, tokens_sold, sol_collected, created_at_ms
		) VALUES (?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		snap.TokenAddress,
		uint64(snap.PriceLamports),
		uint64(snap.TokensSold),
		uint64(snap.SolCollected),
		uint64(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert price snapshot: %w", err)
	}

	return nil
}

// ListByToken retrieves snapshots for a token, ordered by creation time ASC.
func (s *SnapshotStore) ListByToken(ctx context.Context, tokenAddress string, limit int) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT token_address, price_lamports, tokens_sold, sol_collected, created_at_ms
		FROM price_snapshots
		WHERE token_address = ?
		ORDER BY created_at_ms ASC
	`
	args := []any{tokenAddress}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list price snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows driver.Rows) ([]*domain.PriceSnapshot, error) {
	var snaps []*domain.PriceSnapshot

	for rows.Next() {
		var snap domain.PriceSnapshot
		var price, sold, collected, createdAt uint64

		err := rows.Scan(&snap.TokenAddress, &price, &sold, &collected, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan price snapshot row: %w", err)
		}

		snap.PriceLamports = int64(price)
		snap.TokensSold = int64(sold)
		snap.SolCollected = int64(collected)
		snap.CreatedAt = int64(createdAt)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price snapshot rows: %w", err)
	}

	return snaps, nil
}
