package phisec

import "time"

// Key derivation and cipher parameters.
const (
	// KeyLength is the size in bytes of every KeyRing key (AES-256).
	KeyLength = 32

	// KDFIterations is the PBKDF2-HMAC-SHA256 iteration count used when
	// deriving the version-1 key from the master secret.
	KDFIterations = 100_000

	// MinMasterSecretLength is the minimum accepted master secret size.
	MinMasterSecretLength = 16

	// MinSigningSecretLength is the minimum accepted HS256 signing secret
	// size. HMAC-SHA256 keys shorter than the hash output weaken the MAC.
	MinSigningSecretLength = 32
)

// Ciphertext wire format: version(2) || nonce(12) || ciphertext+tag.
const (
	VersionHeaderSize = 2
	NonceSize         = 12
	TagSize           = 16

	// minCiphertextSize is the smallest well-formed payload: the header,
	// the nonce, and the tag of an empty GCM output.
	minCiphertextSize = VersionHeaderSize + NonceSize + TagSize
)

// Key rotation defaults.
const (
	// DefaultMaxVersions is how many key versions the ring retains.
	DefaultMaxVersions = 3

	// DefaultRotationInterval is the minimum age of the current key before
	// Rotate produces a new version.
	DefaultRotationInterval = 90 * 24 * time.Hour
)

// Token lifecycle defaults.
const (
	DefaultAccessTokenTTL    = 15 * time.Minute
	DefaultRefreshTokenTTL   = 30 * 24 * time.Hour
	DefaultRefreshThreshold  = 15 * time.Minute
	DefaultRevocationTimeout = 2 * time.Second

	// RefreshTokenEntropy is the number of random bytes in an opaque
	// refresh token before base64 encoding.
	RefreshTokenEntropy = 32
)

// Environment variable names read by LoadConfigFromEnvironment.
const (
	EnvMasterSecret      = "PHISEC_MASTER_SECRET"
	EnvKeySalt           = "PHISEC_KEY_SALT"
	EnvSigningSecret     = "PHISEC_SIGNING_SECRET"
	EnvAccessTokenTTL    = "PHISEC_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL   = "PHISEC_REFRESH_TOKEN_TTL"
	EnvRotationInterval  = "PHISEC_ROTATION_INTERVAL"
	EnvMaxKeyVersions    = "PHISEC_MAX_KEY_VERSIONS"
	EnvRevocationTimeout = "PHISEC_REVOCATION_TIMEOUT"
	EnvKeyLogPath        = "PHISEC_KEYLOG_PATH"
)
