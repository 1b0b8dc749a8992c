package phisec

import (
	"fmt"
	"time"

	"github.com/hengadev/errsx"

	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/keylog"
)

// Config holds the configuration for building a KeyRing and TokenIssuer.
//
// The struct contains only data, no behavior. Configuration can be loaded
// from any source (environment variables, a YAML file, code) and passed
// explicitly to the constructors.
//
// Required fields:
//   - MasterSecret: KeyRing derivation input (>= 16 bytes)
//   - KeySalt: KeyRing derivation salt
//   - SigningSecret: HS256 token signing secret (>= 32 bytes), independent
//     of MasterSecret
//
// Optional fields default per the package constants.
//
// Example usage:
//
//	cfg := phisec.Config{
//	    MasterSecret:  masterSecret,
//	    KeySalt:       salt,
//	    SigningSecret: signingSecret,
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	ring, err := cfg.NewKeyRing()
type Config struct {
	// MasterSecret is the KeyRing derivation input. Required, >= 16 bytes.
	MasterSecret []byte

	// KeySalt is the PBKDF2 salt. Required. It is not secret but must be
	// stable across restarts or existing ciphertext becomes undecryptable.
	KeySalt []byte

	// SigningSecret signs access tokens. Required, >= 32 bytes, and must
	// not be derived from MasterSecret.
	SigningSecret []byte

	// MaxKeyVersions is how many key versions the ring retains.
	// Optional. Default: 3.
	MaxKeyVersions int

	// RotationInterval is the minimum current-key age before Rotate acts.
	// Optional. Default: 90 days.
	RotationInterval time.Duration

	// AccessTokenTTL is the default access token lifetime.
	// Optional. Default: 15 minutes.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the refresh token lifetime.
	// Optional. Default: 30 days.
	RefreshTokenTTL time.Duration

	// RevocationTimeout bounds revocation store calls.
	// Optional. Default: 2 seconds.
	RevocationTimeout time.Duration

	// KeyLogPath, when set, opens a SQLite rotation journal at this path
	// and attaches it to the KeyRing.
	KeyLogPath string

	// ObservabilityHook receives operation callbacks. Optional; a nil hook
	// means no observation.
	ObservabilityHook ObservabilityHook

	// MetricsCollector backs StandardObservabilityHook when set and no
	// explicit hook is given.
	MetricsCollector MetricsCollector
}

// Validate checks that the configuration is valid and applies defaults to
// optional fields. Validation problems are collected per field, not
// reported one at a time.
func (c *Config) Validate() error {
	errs := errsx.Map{}

	if len(c.MasterSecret) < MinMasterSecretLength {
		errs.Set("masterSecret", fmt.Errorf("%w: must be at least %d bytes, got %d",
			ErrWeakSecret, MinMasterSecretLength, len(c.MasterSecret)))
	}
	if len(c.KeySalt) == 0 {
		errs.Set("keySalt", fmt.Errorf("%w: key salt is required", ErrInvalidConfiguration))
	}
	if len(c.SigningSecret) < MinSigningSecretLength {
		errs.Set("signingSecret", fmt.Errorf("%w: must be at least %d bytes, got %d",
			ErrWeakSecret, MinSigningSecretLength, len(c.SigningSecret)))
	}
	if c.MaxKeyVersions < 0 {
		errs.Set("maxKeyVersions", fmt.Errorf("%w: cannot be negative, got %d",
			ErrInvalidConfiguration, c.MaxKeyVersions))
	}
	if c.RotationInterval < 0 {
		errs.Set("rotationInterval", fmt.Errorf("%w: cannot be negative, got %s",
			ErrInvalidConfiguration, c.RotationInterval))
	}
	if c.AccessTokenTTL < 0 {
		errs.Set("accessTokenTTL", fmt.Errorf("%w: cannot be negative, got %s",
			ErrInvalidConfiguration, c.AccessTokenTTL))
	}
	if c.RefreshTokenTTL < 0 {
		errs.Set("refreshTokenTTL", fmt.Errorf("%w: cannot be negative, got %s",
			ErrInvalidConfiguration, c.RefreshTokenTTL))
	}
	if c.RevocationTimeout < 0 {
		errs.Set("revocationTimeout", fmt.Errorf("%w: cannot be negative, got %s",
			ErrInvalidConfiguration, c.RevocationTimeout))
	}

	if c.MaxKeyVersions == 0 {
		c.MaxKeyVersions = DefaultMaxVersions
	}
	if c.RotationInterval == 0 {
		c.RotationInterval = DefaultRotationInterval
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if c.RevocationTimeout == 0 {
		c.RevocationTimeout = DefaultRevocationTimeout
	}

	return errs.AsError()
}

// hook resolves the effective observability hook: an explicit hook wins,
// then a metrics-backed standard hook, then no-op.
func (c *Config) hook() ObservabilityHook {
	if c.ObservabilityHook != nil {
		return c.ObservabilityHook
	}
	if c.MetricsCollector != nil {
		return NewStandardObservabilityHook(c.MetricsCollector)
	}
	return &NoOpObservabilityHook{}
}

// NewKeyRing validates the configuration and derives a KeyRing from it.
// When KeyLogPath is set, a SQLite rotation journal is opened there and
// attached to the ring; the journal stays open for the life of the process.
func (c *Config) NewKeyRing(opts ...KeyRingOption) (*KeyRing, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	ringOpts := []KeyRingOption{
		WithMaxVersions(c.MaxKeyVersions),
		WithRotationInterval(c.RotationInterval),
		WithKeyRingObservability(c.hook()),
	}
	if c.KeyLogPath != "" {
		journal, err := keylog.Open(c.KeyLogPath)
		if err != nil {
			return nil, fmt.Errorf("opening rotation journal: %w", err)
		}
		ringOpts = append(ringOpts, WithRotationJournal(journal))
	}
	ringOpts = append(ringOpts, opts...)

	return DeriveKeyRing(c.MasterSecret, c.KeySalt, ringOpts...)
}

// NewTokenIssuer validates the configuration and builds a TokenIssuer on
// the given revocation store.
func (c *Config) NewTokenIssuer(store RevocationStore, opts ...IssuerOption) (*TokenIssuer, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	issuerOpts := []IssuerOption{
		WithAccessTokenTTL(c.AccessTokenTTL),
		WithRefreshTokenTTL(c.RefreshTokenTTL),
		WithRevocationTimeout(c.RevocationTimeout),
		WithIssuerObservability(c.hook()),
	}
	issuerOpts = append(issuerOpts, opts...)

	return NewTokenIssuer(c.SigningSecret, store, issuerOpts...)
}
