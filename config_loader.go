package phisec

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfigFromEnvironment loads configuration from environment variables.
//
// Secrets arrive base64 encoded (standard encoding) so binary secrets
// survive shells and deployment manifests.
//
// Required environment variables:
//   - PHISEC_MASTER_SECRET: base64 master secret (>= 16 bytes decoded)
//   - PHISEC_KEY_SALT: base64 derivation salt
//   - PHISEC_SIGNING_SECRET: base64 token signing secret (>= 32 bytes decoded)
//
// Optional environment variables:
//   - PHISEC_ACCESS_TOKEN_TTL, PHISEC_REFRESH_TOKEN_TTL,
//     PHISEC_ROTATION_INTERVAL, PHISEC_REVOCATION_TIMEOUT: Go durations
//   - PHISEC_MAX_KEY_VERSIONS: integer
//   - PHISEC_KEYLOG_PATH: SQLite rotation journal path
//
// Returns an error if required variables are missing or validation fails.
func LoadConfigFromEnvironment() (Config, error) {
	cfg := Config{}

	var err error
	if cfg.MasterSecret, err = requireBase64Env(EnvMasterSecret); err != nil {
		return Config{}, err
	}
	if cfg.KeySalt, err = requireBase64Env(EnvKeySalt); err != nil {
		return Config{}, err
	}
	if cfg.SigningSecret, err = requireBase64Env(EnvSigningSecret); err != nil {
		return Config{}, err
	}

	if cfg.AccessTokenTTL, err = durationEnv(EnvAccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = durationEnv(EnvRefreshTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RotationInterval, err = durationEnv(EnvRotationInterval); err != nil {
		return Config{}, err
	}
	if cfg.RevocationTimeout, err = durationEnv(EnvRevocationTimeout); err != nil {
		return Config{}, err
	}

	if raw := os.Getenv(EnvMaxKeyVersions); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s must be an integer: %w", ErrInvalidConfiguration, EnvMaxKeyVersions, err)
		}
		cfg.MaxKeyVersions = n
	}
	cfg.KeyLogPath = os.Getenv(EnvKeyLogPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// configFile mirrors Config for YAML decoding; secrets stay base64 in the
// file and durations are Go duration strings, decoded here.
type configFile struct {
	MasterSecret      string `yaml:"master_secret"`
	KeySalt           string `yaml:"key_salt"`
	SigningSecret     string `yaml:"signing_secret"`
	MaxKeyVersions    int    `yaml:"max_key_versions"`
	RotationInterval  string `yaml:"rotation_interval"`
	AccessTokenTTL    string `yaml:"access_token_ttl"`
	RefreshTokenTTL   string `yaml:"refresh_token_ttl"`
	RevocationTimeout string `yaml:"revocation_timeout"`
	KeyLogPath        string `yaml:"keylog_path"`
}

// LoadConfigFromFile loads configuration from a YAML file. The file layout
// matches Config field for field, with secrets base64 encoded:
//
//	master_secret: "base64..."
//	key_salt: "base64..."
//	signing_secret: "base64..."
//	access_token_ttl: 15m
//	keylog_path: /var/lib/phisec/keylog.db
func LoadConfigFromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var file configFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Config{}, fmt.Errorf("%w: parsing config file: %w", ErrInvalidConfiguration, err)
	}

	cfg := Config{
		MaxKeyVersions: file.MaxKeyVersions,
		KeyLogPath:     file.KeyLogPath,
	}
	if cfg.RotationInterval, err = parseDurationField("rotation_interval", file.RotationInterval); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = parseDurationField("access_token_ttl", file.AccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenTTL, err = parseDurationField("refresh_token_ttl", file.RefreshTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.RevocationTimeout, err = parseDurationField("revocation_timeout", file.RevocationTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MasterSecret, err = decodeBase64Field("master_secret", file.MasterSecret); err != nil {
		return Config{}, err
	}
	if cfg.KeySalt, err = decodeBase64Field("key_salt", file.KeySalt); err != nil {
		return Config{}, err
	}
	if cfg.SigningSecret, err = decodeBase64Field("signing_secret", file.SigningSecret); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func requireBase64Env(key string) ([]byte, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s environment variable is required", ErrInvalidConfiguration, key)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %w", ErrInvalidConfiguration, key, err)
	}
	return decoded, nil
}

func decodeBase64Field(name, raw string) ([]byte, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidConfiguration, name)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %w", ErrInvalidConfiguration, name, err)
	}
	return decoded, nil
}

func parseDurationField(name, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a valid duration: %w", ErrInvalidConfiguration, name, err)
	}
	return d, nil
}

func durationEnv(key string) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a valid duration: %w", ErrInvalidConfiguration, key, err)
	}
	return d, nil
}
