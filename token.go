package phisec

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminator carried in the "type" claim. An access token is
// never accepted where a refresh token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims is the claim set of an access token. It embeds the
// registered claims (sub, jti, iat, nbf, exp) and adds the platform's
// authorization context.
type AccessClaims struct {
	TokenType   string   `json:"type"`
	DeviceID    string   `json:"device_id,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenRequest describes the identity an access token is issued for.
type AccessTokenRequest struct {
	// Subject is the user identifier. Required.
	Subject string

	// DeviceID binds the token to a registered device. Optional; when set,
	// Verify enforces the binding against the caller's expected device.
	DeviceID string

	Roles       []string
	Permissions []string
}

// RefreshToken is the result of IssueRefresh. Token is the opaque secret,
// returned exactly once; the caller persists Hash (and the metadata) and
// discards Token after delivering it to the client.
type RefreshToken struct {
	Token     string
	Hash      string
	Subject   string
	DeviceID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HashRefreshToken returns the hex SHA-256 digest of an opaque refresh
// token. Persist and look up refresh tokens by this hash only; a database
// leak must not hand out usable tokens.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
