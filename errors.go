package phisec

import (
	"errors"
)

var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrWeakSecret           = errors.New("secret does not meet minimum length")

	// Cipher errors
	ErrEmptyPlaintext       = errors.New("plaintext is empty")
	ErrMalformedPayload     = errors.New("malformed encrypted payload")
	ErrUnknownKeyVersion    = errors.New("unknown key version")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Token errors
	ErrEmptyClaims      = errors.New("token subject is empty")
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrRevokedToken     = errors.New("token revoked")
	ErrDeviceMismatch   = errors.New("token device binding mismatch")

	// Store errors
	ErrStoreUnavailable           = errors.New("revocation store unavailable")
	ErrRevocationCheckUnavailable = errors.New("revocation check unavailable")
)

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrWeakSecret)
}

// IsIntegrityError returns true if the error means ciphertext could not be
// decrypted as stored: tampering, truncation, or a key version the ring no
// longer holds.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrUnknownKeyVersion)
}

// IsTokenValidationError returns true if the error represents a token that
// was understood but rejected. These map to 401 responses, never retries.
func IsTokenValidationError(err error) bool {
	return errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrRevokedToken) ||
		errors.Is(err, ErrDeviceMismatch) ||
		errors.Is(err, ErrMalformedToken)
}

// IsRetryableError returns true if the error represents a transient failure
// that might succeed on retry. Retrying is the caller's decision; nothing in
// this package retries internally.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrRevocationCheckUnavailable)
}

// IsSecurityIncident returns true for failures that warrant an audit trail
// entry beyond normal request logging: forged signatures, tampered
// ciphertext, use of a revoked token, or a device binding violation.
func IsSecurityIncident(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrRevokedToken) ||
		errors.Is(err, ErrDeviceMismatch)
}
