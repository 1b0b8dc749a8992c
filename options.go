package phisec

import (
	"fmt"
	"time"
)

// KeyRingOption represents a configuration option for DeriveKeyRing
type KeyRingOption func(*KeyRing) error

// WithMaxVersions sets how many key versions the ring retains
func WithMaxVersions(n int) KeyRingOption {
	return func(r *KeyRing) error {
		if n < 1 {
			return fmt.Errorf("%w: max versions must be at least 1, got %d", ErrInvalidConfiguration, n)
		}
		r.maxVersions = n
		return nil
	}
}

// WithRotationInterval sets the minimum age of the current key before
// Rotate produces a new version
func WithRotationInterval(d time.Duration) KeyRingOption {
	return func(r *KeyRing) error {
		if d <= 0 {
			return fmt.Errorf("%w: rotation interval must be positive, got %s", ErrInvalidConfiguration, d)
		}
		r.rotationInterval = d
		return nil
	}
}

// WithKeyRingObservability sets the observability hook for key lifecycle events
func WithKeyRingObservability(hook ObservabilityHook) KeyRingOption {
	return func(r *KeyRing) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidConfiguration)
		}
		r.hook = hook
		return nil
	}
}

// WithRotationJournal sets the journal that records rotation events
func WithRotationJournal(journal RotationJournal) KeyRingOption {
	return func(r *KeyRing) error {
		if journal == nil {
			return fmt.Errorf("%w: rotation journal cannot be nil", ErrInvalidConfiguration)
		}
		r.journal = journal
		return nil
	}
}

// CipherOption represents a configuration option for NewPHICipher
type CipherOption func(*PHICipher) error

// WithCipherObservability sets the observability hook for encrypt and
// decrypt operations
func WithCipherObservability(hook ObservabilityHook) CipherOption {
	return func(c *PHICipher) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidConfiguration)
		}
		c.hook = hook
		return nil
	}
}

// IssuerOption represents a configuration option for NewTokenIssuer
type IssuerOption func(*TokenIssuer) error

// WithAccessTokenTTL sets the default access token lifetime
func WithAccessTokenTTL(d time.Duration) IssuerOption {
	return func(i *TokenIssuer) error {
		if d <= 0 {
			return fmt.Errorf("%w: access token TTL must be positive, got %s", ErrInvalidConfiguration, d)
		}
		i.accessTTL = d
		return nil
	}
}

// WithRefreshTokenTTL sets the refresh token lifetime
func WithRefreshTokenTTL(d time.Duration) IssuerOption {
	return func(i *TokenIssuer) error {
		if d <= 0 {
			return fmt.Errorf("%w: refresh token TTL must be positive, got %s", ErrInvalidConfiguration, d)
		}
		i.refreshTTL = d
		return nil
	}
}

// WithRefreshThreshold sets how close to expiry ShouldRefresh starts
// returning true
func WithRefreshThreshold(d time.Duration) IssuerOption {
	return func(i *TokenIssuer) error {
		if d <= 0 {
			return fmt.Errorf("%w: refresh threshold must be positive, got %s", ErrInvalidConfiguration, d)
		}
		i.refreshThreshold = d
		return nil
	}
}

// WithRevocationTimeout bounds every revocation store call made by Verify
// and Revoke
func WithRevocationTimeout(d time.Duration) IssuerOption {
	return func(i *TokenIssuer) error {
		if d <= 0 {
			return fmt.Errorf("%w: revocation timeout must be positive, got %s", ErrInvalidConfiguration, d)
		}
		i.revocationTimeout = d
		return nil
	}
}

// WithAllowOfflineValidation makes Verify treat a failed revocation check
// as "not revoked" instead of failing closed. Only deployments that accept
// the resulting revocation lag should enable this.
func WithAllowOfflineValidation() IssuerOption {
	return func(i *TokenIssuer) error {
		i.allowOffline = true
		return nil
	}
}

// WithIssuerObservability sets the observability hook for token operations
func WithIssuerObservability(hook ObservabilityHook) IssuerOption {
	return func(i *TokenIssuer) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidConfiguration)
		}
		i.hook = hook
		return nil
	}
}
