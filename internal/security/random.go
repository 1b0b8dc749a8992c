// Package security provides cryptographically secure random generation for
// keys, nonces, salts, and opaque tokens.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateRandom generates cryptographically secure random bytes
func GenerateRandom(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size: %d", size)
	}

	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, fmt.Errorf("secure random generation failed: %w", err)
	}
	return data, nil
}

// GenerateKey generates a cryptographic key of specified size
func GenerateKey(keySize int) ([]byte, error) {
	if keySize < 16 {
		return nil, fmt.Errorf("insecure key size: %d bytes (minimum 16 bytes)", keySize)
	}
	return GenerateRandom(keySize)
}

// GenerateNonce generates a cryptographically secure nonce
func GenerateNonce(size int) ([]byte, error) {
	if size < 12 { // GCM recommends 12 bytes minimum
		return nil, fmt.Errorf("nonce size too small: %d bytes (minimum 12 bytes)", size)
	}
	return GenerateRandom(size)
}

// GenerateSalt generates a cryptographically secure salt
func GenerateSalt(size int) ([]byte, error) {
	if size < 16 {
		return nil, fmt.Errorf("salt size too small: %d bytes (minimum 16 bytes)", size)
	}
	return GenerateRandom(size)
}

// GenerateToken generates an opaque URL-safe token with entropy random
// bytes, encoded with unpadded URL-safe base64.
func GenerateToken(entropy int) (string, error) {
	if entropy < 16 {
		return "", fmt.Errorf("token entropy too small: %d bytes (minimum 16 bytes)", entropy)
	}

	raw, err := GenerateRandom(entropy)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
