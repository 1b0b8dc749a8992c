// Package phisec provides the PHI (Protected Health Information) security
// core for the MyHealthVallet platform: key-versioned authenticated
// encryption for PHI fields and the session token lifecycle (issue, verify,
// revoke).
//
// The package is built around four pieces:
//
//   - KeyRing: a bounded, monotonically versioned set of AES-256 keys
//     derived from a master secret, rotated on a fixed interval.
//   - PHICipher: AES-256-GCM encryption of byte payloads with the key
//     version embedded in the ciphertext, so data encrypted before a
//     rotation stays readable while the encrypting key is retained.
//   - TokenIssuer: HS256 access tokens (github.com/golang-jwt/jwt/v5) and
//     opaque refresh tokens, with typed verification failures and
//     revocation through an external TTL store.
//   - RevocationStore: the consumed interface for that TTL store, with
//     Redis and in-memory implementations under providers/.
//
// The encryption side and the token side share no runtime state. The
// signing secret is deliberately separate from the KeyRing master secret:
// compromise of one must not compromise the other.
//
// # Quick start
//
//	cfg, err := phisec.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ring, err := cfg.NewKeyRing()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cipher, err := phisec.NewPHICipher()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blob, err := cipher.Encrypt(ctx, ring, []byte(record.MedicalNotes))
//
//	store := redisrevocation.New(redisrevocation.Config{Addr: "localhost:6379"})
//	issuer, err := cfg.NewTokenIssuer(store)
//
//	token, err := issuer.IssueAccess(ctx, phisec.AccessTokenRequest{
//	    Subject:  user.ID,
//	    DeviceID: session.DeviceID,
//	    Roles:    []string{"patient"},
//	})
//
// # Error handling
//
// Every failure mode has its own sentinel error (ErrExpiredToken,
// ErrRevokedToken, ErrAuthenticationFailed, ...) so callers branch with
// errors.Is instead of matching message strings. The classifier helpers
// (IsConfigurationError, IsTokenValidationError, IsSecurityIncident,
// IsRetryableError) group them by how the caller should react. None of the
// failures in this package are retried internally; only
// ErrRevocationCheckUnavailable is transient at all, and retry policy for
// it belongs to the caller.
//
// # Observability
//
// Security-sensitive operations accept an ObservabilityHook so that every
// encrypt, decrypt, rotation, issuance, verification, and revocation is
// logged with its outcome. AuditHook is the slog-backed implementation; it
// records operations and outcomes but never payloads, key material, or
// token strings.
package phisec
