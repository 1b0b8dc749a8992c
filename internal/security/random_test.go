package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "AES-128", size: 16},
		{name: "AES-256", size: 32},
		{name: "HMAC", size: 64},
		{name: "too small", size: 8, wantErr: true},
		{name: "zero", size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := GenerateKey(tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, tt.size)
		})
	}
}

func TestGenerateNonce(t *testing.T) {
	nonce, err := GenerateNonce(12)
	require.NoError(t, err)
	assert.Len(t, nonce, 12)

	_, err = GenerateNonce(8)
	assert.Error(t, err)
}

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(16)
	require.NoError(t, err)
	assert.Len(t, salt, 16)

	_, err = GenerateSalt(8)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	again, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)

	_, err = GenerateToken(8)
	assert.Error(t, err)
}

func TestGenerateRandom_Distinct(t *testing.T) {
	a, err := GenerateRandom(32)
	require.NoError(t, err)
	b, err := GenerateRandom(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
