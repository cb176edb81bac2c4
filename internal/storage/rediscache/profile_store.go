package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sames-backend/internal/domain"
	"sames-backend/internal/storage"
)

const profileTTL = 5 * time.Minute

// ProfileStore is a read-through cache in front of another
// storage.ProfileStore. Profiles are displayed next to every trade and
// chat message, so the same handful of wallets gets read far more often
// than written.
//
// Key schema:
//
//	profile:{wallet} - JSON-serialized domain.Profile
type ProfileStore struct {
	rdb   *redis.Client
	store storage.ProfileStore
}

// NewProfileStore wraps store with a Redis cache backed by the given Client.
func NewProfileStore(c *Client, store storage.ProfileStore) *ProfileStore {
	return &ProfileStore{rdb: c.Underlying(), store: store}
}

func profileKey(wallet string) string { return "profile:" + wallet }

// Upsert writes through to the underlying store and refreshes the cache
// entry. A cache write failure is not fatal; the entry expires on its own.
func (ps *ProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	if err := ps.store.Upsert(ctx, profile); err != nil {
		return err
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("redis: marshal profile %s: %w", profile.Wallet, err)
	}
	_ = ps.rdb.Set(ctx, profileKey(profile.Wallet), data, profileTTL).Err()

	return nil
}

// Get retrieves a profile, serving from the cache when possible and
// falling back to the underlying store on a miss.
func (ps *ProfileStore) Get(ctx context.Context, wallet string) (*domain.Profile, error) {
	data, err := ps.rdb.Get(ctx, profileKey(wallet)).Bytes()
	if err == nil {
		var profile domain.Profile
		if err := json.Unmarshal(data, &profile); err == nil {
			return &profile, nil
		}
		// Corrupt entry; fall through and let the backfill replace it.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get profile %s: %w", wallet, err)
	}

	profile, err := ps.store.Get(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		_ = ps.rdb.Set(ctx, profileKey(wallet), data, profileTTL).Err()
	}

	return profile, nil
}

// GetBatch retrieves profiles for a set of wallets. Cached entries are
// served from Redis via MGET; the rest come from the underlying store and
// are backfilled.
func (ps *ProfileStore) GetBatch(ctx context.Context, wallets []string) (map[string]*domain.Profile, error) {
	result := make(map[string]*domain.Profile, len(wallets))
	if len(wallets) == 0 {
		return result, nil
	}

	keys := make([]string, len(wallets))
	for i, w := range wallets {
		keys[i] = profileKey(w)
	}

	var missing []string
	values, err := ps.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		// Redis down: serve everything from the store.
		missing = wallets
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, wallets[i])
				continue
			}
			var profile domain.Profile
			if err := json.Unmarshal([]byte(raw), &profile); err != nil {
				missing = append(missing, wallets[i])
				continue
			}
			result[wallets[i]] = &profile
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := ps.store.GetBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := ps.rdb.Pipeline()
	for wallet, profile := range fetched {
		result[wallet] = profile
		if data, err := json.Marshal(profile); err == nil {
			pipe.Set(ctx, profileKey(wallet), data, profileTTL)
		}
	}
	_, _ = pipe.Exec(ctx)

	return result, nil
}

// Compile-time interface check.
var _ storage.ProfileStore = (*ProfileStore)(nil)
