package phisec

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/security"
)

// KeyRing holds a bounded set of 32-byte AES keys indexed by a monotonically
// increasing version number. Version 1 is derived from the master secret;
// later versions are generated randomly by Rotate. The ring retains at most
// maxVersions keys so that ciphertext written before a rotation stays
// decryptable across the retention window, after which old versions are
// evicted and their ciphertext must have been re-encrypted.
//
// All methods are safe for concurrent use. Only Rotate mutates the ring.
type KeyRing struct {
	mu               sync.RWMutex
	keys             map[uint16][]byte
	currentVersion   uint16
	lastRotation     time.Time
	maxVersions      int
	rotationInterval time.Duration
	hook             ObservabilityHook
	journal          RotationJournal
}

// DeriveKeyRing derives a new KeyRing from a master secret and salt using
// PBKDF2-HMAC-SHA256 with 100,000 iterations. The derivation is
// deterministic: the same secret and salt always reproduce the version-1
// key, which is what lets a restarted process decrypt existing data.
//
// Returns ErrWeakSecret if the master secret is shorter than 16 bytes.
func DeriveKeyRing(masterSecret, salt []byte, opts ...KeyRingOption) (*KeyRing, error) {
	if len(masterSecret) < MinMasterSecretLength {
		return nil, fmt.Errorf("%w: master secret must be at least %d bytes, got %d",
			ErrWeakSecret, MinMasterSecretLength, len(masterSecret))
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: key derivation salt cannot be empty", ErrInvalidConfiguration)
	}

	ring := &KeyRing{
		keys:             make(map[uint16][]byte),
		maxVersions:      DefaultMaxVersions,
		rotationInterval: DefaultRotationInterval,
		hook:             &NoOpObservabilityHook{},
	}
	for _, opt := range opts {
		if err := opt(ring); err != nil {
			return nil, err
		}
	}

	key := pbkdf2.Key(masterSecret, salt, KDFIterations, KeyLength, sha256.New)
	ring.keys[1] = key
	ring.currentVersion = 1
	ring.lastRotation = time.Now().UTC()

	ring.hook.OnKeyOperation(context.Background(), "derive", 1, nil)
	return ring, nil
}

// Current returns the current key version and a copy of its key. It never
// fails: the ring always holds its current version.
func (r *KeyRing) Current() (uint16, []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := make([]byte, KeyLength)
	copy(key, r.keys[r.currentVersion])
	return r.currentVersion, key
}

// Get returns a copy of the key for the given version, or
// ErrUnknownKeyVersion if the ring does not hold it (never derived here, or
// already evicted).
func (r *KeyRing) Get(version uint16) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.keys[version]
	if !ok {
		return nil, fmt.Errorf("%w: version %d", ErrUnknownKeyVersion, version)
	}
	key := make([]byte, KeyLength)
	copy(key, stored)
	return key, nil
}

// Versions returns the retained key versions in ascending order.
func (r *KeyRing) Versions() []uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]uint16, 0, len(r.keys))
	for v := uint16(1); v <= r.currentVersion; v++ {
		if _, ok := r.keys[v]; ok {
			versions = append(versions, v)
		}
	}
	return versions
}

// Rotate generates a fresh random key as version current+1 and makes it
// current, then evicts the strictly oldest versions until at most
// maxVersions remain. The version that was current when Rotate was called
// is never evicted, whatever maxVersions says.
//
// Rotation is a no-op returning (false, nil) while the current key is
// younger than the rotation interval relative to now. The journal, if
// configured, records every performed rotation; a journal failure is
// reported through the hook but does not undo the rotation.
func (r *KeyRing) Rotate(now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastRotation) < r.rotationInterval {
		return false, nil
	}

	key, err := security.GenerateKey(KeyLength)
	if err != nil {
		return false, fmt.Errorf("rotation key generation: %w", err)
	}

	previous := r.currentVersion
	r.currentVersion++
	r.keys[r.currentVersion] = key
	r.lastRotation = now.UTC()

	var evicted []uint16
	for v := uint16(1); v < previous && len(r.keys) > r.maxVersions; v++ {
		if _, ok := r.keys[v]; ok {
			delete(r.keys, v)
			evicted = append(evicted, v)
		}
	}

	ctx := context.Background()
	r.hook.OnKeyOperation(ctx, "rotate", r.currentVersion, map[string]interface{}{
		"evicted_count": fmt.Sprintf("%d", len(evicted)),
	})
	for _, v := range evicted {
		r.hook.OnKeyOperation(ctx, "evict", v, nil)
	}

	if r.journal != nil {
		if err := r.journal.RecordRotation(ctx, r.currentVersion, r.lastRotation, evicted); err != nil {
			r.hook.OnError(ctx, "rotation_journal", err, map[string]interface{}{
				"version": fmt.Sprintf("%d", r.currentVersion),
			})
		}
	}

	return true, nil
}
