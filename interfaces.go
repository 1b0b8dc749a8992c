package phisec

import (
	"context"
	"time"
)

// RevocationStore is the TTL key-value store consulted by TokenIssuer for
// token revocation. The store's own expiry is the cleanup mechanism: a
// revocation entry outlives the token it denies by at most the store's
// clock skew, and the core never scans or purges entries itself.
//
// Implementations must be safe for concurrent use. Both methods must honor
// context cancellation; TokenIssuer bounds every call with a timeout and
// treats any error as "revocation state unknown", which fails closed.
//
// providers/redisrevocation and providers/memoryrevocation implement this
// interface. Custom implementations (DynamoDB, memcached) only need these
// two methods.
type RevocationStore interface {
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// SetWithTTL stores key=value, expiring after ttl. A ttl <= 0 must be
	// treated as a no-op, not an unbounded write.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// SecretSource retrieves the KeyRing master secret from wherever the
// deployment keeps it. providers/hashicorpvault and providers/awskms
// implement this interface; environment-variable deployments can use
// LoadConfigFromEnvironment instead and skip it entirely.
type SecretSource interface {
	// MasterSecret returns the raw master secret bytes.
	MasterSecret(ctx context.Context) ([]byte, error)
}

// RotationJournal records key rotation events for compliance audits. It
// receives versions and timestamps only, never key material.
//
// internal/keylog provides a SQLite-backed implementation. The KeyRing
// works without one; a nil journal disables journaling.
type RotationJournal interface {
	// RecordRotation records that newVersion became current at rotatedAt.
	// evicted lists versions dropped by the same rotation, oldest first.
	RecordRotation(ctx context.Context, newVersion uint16, rotatedAt time.Time, evicted []uint16) error
}
