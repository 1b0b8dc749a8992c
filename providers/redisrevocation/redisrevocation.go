// Package redisrevocation implements the phisec RevocationStore on Redis.
//
// Redis suits the denylist access pattern well: entries carry a native TTL,
// so revocations clean themselves up when the token they deny would have
// expired anyway, and Exists is a single O(1) command on the hot path of
// every request.
package redisrevocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures a Store.
type Config struct {
	// Addr is the Redis address, host:port. Ignored when Client is set.
	Addr string

	// Password authenticates against Redis. Optional.
	Password string

	// DB selects the Redis logical database. Optional.
	DB int

	// Client, when set, is used directly instead of dialing Addr. This is
	// how deployments share a connection pool with the rest of the service.
	Client *redis.Client
}

// Store is a RevocationStore backed by Redis.
type Store struct {
	client *redis.Client
}

// New creates a Store from the configuration.
func New(cfg Config) *Store {
	client := cfg.Client
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	return &Store{client: client}
}

// Exists reports whether key is present and unexpired.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis EXISTS %s: %w", key, err)
	}
	return n == 1, nil
}

// SetWithTTL stores key=value with the given expiry. A non-positive ttl is
// a no-op; Redis would treat it as "no expiry", which must never happen to
// a revocation entry.
func (s *Store) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Ping verifies connectivity, for startup health checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
