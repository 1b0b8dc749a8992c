package phisec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/security"
)

// revocationKeyPrefix namespaces denylist entries in a shared store.
const revocationKeyPrefix = "phisec:revoked:"

// TokenIssuer issues, verifies, and revokes the platform's session tokens:
// HS256 access tokens and opaque refresh tokens. The signing secret is
// independent of any KeyRing master secret.
//
// Verification consults the RevocationStore and fails closed: if the store
// cannot answer within the revocation timeout, the token is rejected with
// ErrRevocationCheckUnavailable rather than assumed valid. The
// WithAllowOfflineValidation option inverts that for deployments that
// accept the revocation lag.
//
// Safe for concurrent use.
type TokenIssuer struct {
	signingSecret     []byte
	store             RevocationStore
	accessTTL         time.Duration
	refreshTTL        time.Duration
	refreshThreshold  time.Duration
	revocationTimeout time.Duration
	allowOffline      bool
	hook              ObservabilityHook
}

// NewTokenIssuer creates a TokenIssuer. Returns ErrWeakSecret if the
// signing secret is shorter than 32 bytes and ErrInvalidConfiguration on a
// nil revocation store.
func NewTokenIssuer(signingSecret []byte, store RevocationStore, opts ...IssuerOption) (*TokenIssuer, error) {
	if len(signingSecret) < MinSigningSecretLength {
		return nil, fmt.Errorf("%w: signing secret must be at least %d bytes, got %d",
			ErrWeakSecret, MinSigningSecretLength, len(signingSecret))
	}
	if store == nil {
		return nil, fmt.Errorf("%w: revocation store is required", ErrInvalidConfiguration)
	}

	issuer := &TokenIssuer{
		signingSecret:     append([]byte(nil), signingSecret...),
		store:             store,
		accessTTL:         DefaultAccessTokenTTL,
		refreshTTL:        DefaultRefreshTokenTTL,
		refreshThreshold:  DefaultRefreshThreshold,
		revocationTimeout: DefaultRevocationTimeout,
		hook:              &NoOpObservabilityHook{},
	}
	for _, opt := range opts {
		if err := opt(issuer); err != nil {
			return nil, err
		}
	}
	return issuer, nil
}

// IssueAccess issues an HS256 access token with the issuer's configured
// TTL. Returns ErrEmptyClaims when the request has no subject.
func (i *TokenIssuer) IssueAccess(ctx context.Context, req AccessTokenRequest) (string, error) {
	return i.IssueAccessWithTTL(ctx, req, i.accessTTL)
}

// IssueAccessWithTTL issues an access token with an explicit TTL. A zero
// TTL is valid and yields a token that is already expired, which is how
// immediate-expiry paths are exercised; a negative TTL is rejected with
// ErrInvalidConfiguration.
func (i *TokenIssuer) IssueAccessWithTTL(ctx context.Context, req AccessTokenRequest, ttl time.Duration) (string, error) {
	start := time.Now()
	i.hook.OnProcessStart(ctx, "issue_access", nil)

	token, err := i.issueAccess(req, ttl)
	i.hook.OnProcessComplete(ctx, "issue_access", time.Since(start), err, nil)
	if err != nil {
		i.hook.OnError(ctx, "issue_access", err, nil)
		return "", err
	}
	return token, nil
}

func (i *TokenIssuer) issueAccess(req AccessTokenRequest, ttl time.Duration) (string, error) {
	if req.Subject == "" {
		return "", ErrEmptyClaims
	}
	if ttl < 0 {
		return "", fmt.Errorf("%w: access token TTL cannot be negative, got %s", ErrInvalidConfiguration, ttl)
	}

	now := time.Now().UTC()
	claims := AccessClaims{
		TokenType:   TokenTypeAccess,
		DeviceID:    req.DeviceID,
		Roles:       req.Roles,
		Permissions: req.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingSecret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// IssueRefresh issues an opaque refresh token for the subject. The caller
// persists only the returned Hash alongside the subject, device, and
// expiry; the Token itself goes to the client and is never stored
// server-side.
func (i *TokenIssuer) IssueRefresh(ctx context.Context, subjectID, deviceID string) (*RefreshToken, error) {
	start := time.Now()
	i.hook.OnProcessStart(ctx, "issue_refresh", nil)

	token, err := i.issueRefresh(subjectID, deviceID)
	i.hook.OnProcessComplete(ctx, "issue_refresh", time.Since(start), err, nil)
	if err != nil {
		i.hook.OnError(ctx, "issue_refresh", err, nil)
		return nil, err
	}
	return token, nil
}

func (i *TokenIssuer) issueRefresh(subjectID, deviceID string) (*RefreshToken, error) {
	if subjectID == "" {
		return nil, ErrEmptyClaims
	}

	opaque, err := security.GenerateToken(RefreshTokenEntropy)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &RefreshToken{
		Token:     opaque,
		Hash:      HashRefreshToken(opaque),
		Subject:   subjectID,
		DeviceID:  deviceID,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

// Verify validates an access token and returns its claims. Failures are
// typed: ErrMalformedToken, ErrInvalidSignature, ErrExpiredToken,
// ErrRevokedToken, ErrDeviceMismatch, and ErrRevocationCheckUnavailable
// when the store cannot answer and offline validation is not enabled.
//
// The device binding is enforced only when both the token and the caller
// supply a device ID; a token issued without one is not device-bound.
func (i *TokenIssuer) Verify(ctx context.Context, token, expectedDeviceID string) (*AccessClaims, error) {
	start := time.Now()
	i.hook.OnProcessStart(ctx, "verify", nil)

	claims, err := i.verify(ctx, token, expectedDeviceID)
	i.hook.OnProcessComplete(ctx, "verify", time.Since(start), err, nil)
	if err != nil {
		i.hook.OnError(ctx, "verify", err, nil)
		return nil, err
	}
	return claims, nil
}

func (i *TokenIssuer) verify(ctx context.Context, token, expectedDeviceID string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, mapParseError(err)
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("%w: token type %q is not an access token", ErrMalformedToken, claims.TokenType)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrMalformedToken)
	}

	revoked, err := i.isRevoked(ctx, claims.ID)
	if err != nil {
		if i.allowOffline {
			i.hook.OnError(ctx, "revocation_check", err, map[string]interface{}{
				"mode": "offline_validation",
			})
		} else {
			return nil, fmt.Errorf("%w: %w", ErrRevocationCheckUnavailable, err)
		}
	} else if revoked {
		return nil, ErrRevokedToken
	}

	if expectedDeviceID != "" && claims.DeviceID != "" && claims.DeviceID != expectedDeviceID {
		return nil, ErrDeviceMismatch
	}

	return claims, nil
}

// Revoke revokes an access token by placing its jti on the denylist until
// the token's own expiry. The signature is verified first so garbage cannot
// populate the store, but claim validity is not: revoking an already
// expired token is a successful no-op, and revoking twice is idempotent.
// The returned bool reports whether the token is revoked (or was already
// beyond use) after the call.
func (i *TokenIssuer) Revoke(ctx context.Context, token string) (bool, error) {
	start := time.Now()
	i.hook.OnProcessStart(ctx, "revoke", nil)

	done, err := i.revoke(ctx, token)
	i.hook.OnProcessComplete(ctx, "revoke", time.Since(start), err, nil)
	if err != nil {
		i.hook.OnError(ctx, "revoke", err, nil)
	}
	return done, err
}

func (i *TokenIssuer) revoke(ctx context.Context, token string) (bool, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &AccessClaims{}
	if _, err := parser.ParseWithClaims(token, claims, i.keyFunc); err != nil {
		return false, mapParseError(err)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return false, fmt.Errorf("%w: missing jti or exp", ErrMalformedToken)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		// Already expired; the store's absence of an entry is equivalent.
		return true, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, i.revocationTimeout)
	defer cancel()

	if err := i.store.SetWithTTL(storeCtx, revocationKeyPrefix+claims.ID, "revoked", ttl); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return true, nil
}

// ShouldRefresh reports whether the token is close enough to expiry that
// the client should exchange its refresh token now. Pure; no store access.
func (i *TokenIssuer) ShouldRefresh(claims *AccessClaims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) <= i.refreshThreshold
}

func (i *TokenIssuer) isRevoked(ctx context.Context, jti string) (bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, i.revocationTimeout)
	defer cancel()

	return i.store.Exists(storeCtx, revocationKeyPrefix+jti)
}

func (i *TokenIssuer) keyFunc(*jwt.Token) (interface{}, error) {
	return i.signingSecret, nil
}

// mapParseError translates golang-jwt parse failures into this package's
// sentinel errors so callers never import the jwt library to branch.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}
