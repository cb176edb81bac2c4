package postgres

import (
	"context"
	"fmt"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

// ProfileStore implements storage.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *Pool
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(pool *Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProfileStore = (*ProfileStore)(nil)

// Upsert creates or replaces the profile for a wallet.
func (s *ProfileStore) Upsert(ctx context.Context, p *domain.Profile) error {
	if p == nil || p.Wallet == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO profiles (wallet, username, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet) DO UPDATE
		SET username = EXCLUDED.username,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query, p.Wallet, p.Username, p.AvatarURL, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Get retrieves a profile by wallet. Returns ErrNotFound if not exists.
func (s *ProfileStore) Get(ctx context.Context, wallet string) (*domain.Profile, error) {
	query := `
		SELECT wallet, username, avatar_url, updated_at
		FROM profiles
		WHERE wallet = $1
	`

	var p domain.Profile
	err := s.pool.QueryRow(ctx, query, wallet).Scan(&p.Wallet, &p.Username, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

// GetBatch retrieves profiles for the given wallets. Missing wallets are
// absent from the result.
func (s *ProfileStore) GetBatch(ctx context.Context, wallets []string) (map[string]*domain.Profile, error) {
	result := make(map[string]*domain.Profile, len(wallets))
	if len(wallets) == 0 {
		return result, nil
	}

	query := `
		SELECT wallet, username, avatar_url, updated_at
		FROM profiles
		WHERE wallet = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, wallets)
	if err != nil {
		return nil, fmt.Errorf("get profiles batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.Wallet, &p.Username, &p.AvatarURL, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		result[p.Wallet] = &p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}

	return result, nil
}
