// Package redis provides a cache-backed RedirectStateStore. Entries carry a
// TTL so abandoned authorization attempts expire on their own; an expired
// entry surfaces as the same "no state found" error as an explicit miss.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/panyam/oauthgate"
)

// Defaults for state entries.
const (
	DefaultKeyPrefix = "authState:"
	DefaultTTL       = 10 * time.Minute
)

// StateStore implements oauthgate.RedirectStateStore on a Redis-compatible
// cache. The client is long-lived and safe for concurrent use; construct it
// at startup and close it at shutdown.
type StateStore struct {
	Client    goredis.UniversalClient
	KeyPrefix string
	TTL       time.Duration
}

// NewStateStore returns a store with the default key prefix and TTL.
func NewStateStore(client goredis.UniversalClient) *StateStore {
	return &StateStore{Client: client, KeyPrefix: DefaultKeyPrefix, TTL: DefaultTTL}
}

func (s *StateStore) key(stateKey string) string {
	prefix := s.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + stateKey
}

// Set stores url under stateKey with the store's TTL.
func (s *StateStore) Set(ctx context.Context, stateKey, url string) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.Client.Set(ctx, s.key(stateKey), url, ttl).Err()
}

// Get returns the stored target, or oauthgate.ErrNoState when the entry is
// missing or already expired.
func (s *StateStore) Get(ctx context.Context, stateKey string) (string, error) {
	val, err := s.Client.Get(ctx, s.key(stateKey)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", oauthgate.ErrNoState
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Del removes the entry. Deleting an absent key is a no-op.
func (s *StateStore) Del(ctx context.Context, stateKey string) error {
	return s.Client.Del(ctx, s.key(stateKey)).Err()
}

// Healthcheck pings the backing cache.
func Healthcheck(ctx context.Context, client goredis.UniversalClient) error {
	return client.Ping(ctx).Err()
}
