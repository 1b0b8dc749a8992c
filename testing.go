package phisec

import (
	"context"
	"sync"
	"time"
)

// Test helpers for consumers of this package. Deterministic secrets, an
// in-memory revocation store with failure injection. Not for production
// use.

// NewTestConfig returns a Config with fixed secrets that passes validation.
func NewTestConfig() Config {
	return Config{
		MasterSecret:  []byte("test-master-secret-0123456789abcdef"),
		KeySalt:       []byte("test-key-salt-0123456789"),
		SigningSecret: []byte("test-signing-secret-0123456789abcdef"),
	}
}

// NewTestKeyRing derives a KeyRing from fixed secrets with a short rotation
// interval so rotation paths are exercisable without clock manipulation.
func NewTestKeyRing(opts ...KeyRingOption) (*KeyRing, error) {
	cfg := NewTestConfig()
	ringOpts := append([]KeyRingOption{WithRotationInterval(time.Nanosecond)}, opts...)
	return DeriveKeyRing(cfg.MasterSecret, cfg.KeySalt, ringOpts...)
}

// TestRevocationStore is an in-memory RevocationStore with failure
// injection for exercising fail-closed behavior.
type TestRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time

	// FailWith, when non-nil, is returned by every call. Set it to
	// simulate an unreachable store.
	FailWith error
}

// NewTestRevocationStore creates an empty TestRevocationStore.
func NewTestRevocationStore() *TestRevocationStore {
	return &TestRevocationStore{entries: make(map[string]time.Time)}
}

func (s *TestRevocationStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return false, s.FailWith
	}
	expiry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *TestRevocationStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	if ttl <= 0 {
		return nil
	}
	s.entries[key] = time.Now().Add(ttl)
	return nil
}

// Len reports how many unexpired entries the store holds.
func (s *TestRevocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := time.Now()
	for _, expiry := range s.entries {
		if now.Before(expiry) {
			n++
		}
	}
	return n
}
