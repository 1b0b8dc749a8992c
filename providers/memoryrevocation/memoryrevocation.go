// Package memoryrevocation implements the phisec RevocationStore in process
// memory, backed by github.com/patrickmn/go-cache.
//
// Single-instance deployments and development environments use it to avoid
// running Redis. It does not share revocation state across processes, so a
// multi-instance deployment that uses it has a revocation hole: a token
// revoked on one instance is still accepted by the others.
package memoryrevocation

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Store is an in-memory RevocationStore.
type Store struct {
	cache *cache.Cache
}

// New creates a Store. Expired entries are purged every five minutes.
func New() *Store {
	return &Store{cache: cache.New(cache.NoExpiration, 5*time.Minute)}
}

// Exists reports whether key is present and unexpired.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, found := s.cache.Get(key)
	return found, nil
}

// SetWithTTL stores key=value with the given expiry. A non-positive ttl is
// a no-op.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(key, value, ttl)
	return nil
}

// Len reports how many entries the store holds, including not yet purged
// expired ones.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
