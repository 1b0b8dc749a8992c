package phisec

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) (*PHICipher, *KeyRing) {
	t.Helper()

	ring, err := DeriveKeyRing(testMasterSecret, testSalt,
		WithRotationInterval(time.Nanosecond))
	require.NoError(t, err)

	cipher, err := NewPHICipher()
	require.NoError(t, err)
	return cipher, ring
}

func TestPHICipher_EncryptDecrypt(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	large := make([]byte, 1<<20) // 1 MiB
	_, err := rand.Read(large)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext []byte
		wantErr   error
	}{
		{
			name:      "short value",
			plaintext: []byte("O+ blood type"),
		},
		{
			name:      "single byte",
			plaintext: []byte{0x42},
		},
		{
			name:      "clinical note",
			plaintext: []byte("Patient reports intermittent chest pain radiating to the left arm."),
		},
		{
			name:      "binary payload at 1MiB",
			plaintext: large,
		},
		{
			name:      "empty plaintext",
			plaintext: nil,
			wantErr:   ErrEmptyPlaintext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := cipher.Encrypt(ctx, ring, tt.plaintext)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(blob), minCiphertextSize)

			decrypted, err := cipher.Decrypt(ctx, ring, blob)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestPHICipher_VersionHeader(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	blob, err := cipher.Encrypt(ctx, ring, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(blob[:VersionHeaderSize]))

	_, err = ring.Rotate(time.Now().Add(time.Second))
	require.NoError(t, err)

	blob2, err := cipher.Encrypt(ctx, ring, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(blob2[:VersionHeaderSize]))
}

func TestPHICipher_DecryptAfterRotation(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	plaintext := []byte("allergy: penicillin")
	blob, err := cipher.Encrypt(ctx, ring, plaintext)
	require.NoError(t, err)

	// Two rotations keep version 1 inside the retention window of 3.
	now := time.Now()
	for i := 0; i < 2; i++ {
		now = now.Add(time.Second)
		_, err := ring.Rotate(now)
		require.NoError(t, err)
	}

	decrypted, err := cipher.Decrypt(ctx, ring, blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestPHICipher_DecryptEvictedVersion(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	blob, err := cipher.Encrypt(ctx, ring, []byte("old record"))
	require.NoError(t, err)

	// Enough rotations to push version 1 out of the ring.
	now := time.Now()
	for i := 0; i < 4; i++ {
		now = now.Add(time.Second)
		_, err := ring.Rotate(now)
		require.NoError(t, err)
	}

	_, err = cipher.Decrypt(ctx, ring, blob)
	assert.ErrorIs(t, err, ErrUnknownKeyVersion)
}

func TestPHICipher_DecryptTampered(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	blob, err := cipher.Encrypt(ctx, ring, []byte("hemoglobin A1c: 6.1%"))
	require.NoError(t, err)

	// A single flipped bit anywhere past the version header must fail
	// authentication. Flipping inside the header instead yields an unknown
	// version, covered separately.
	for _, offset := range []int{VersionHeaderSize, VersionHeaderSize + NonceSize, len(blob) - 1} {
		tampered := append([]byte(nil), blob...)
		tampered[offset] ^= 0x01

		_, err := cipher.Decrypt(ctx, ring, tampered)
		assert.ErrorIs(t, err, ErrAuthenticationFailed, "offset %d", offset)
	}
}

func TestPHICipher_DecryptMalformed(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "nil"},
		{name: "empty", blob: []byte{}},
		{name: "header only", blob: []byte{0x00, 0x01}},
		{name: "one short of minimum", blob: make([]byte, minCiphertextSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cipher.Decrypt(ctx, ring, tt.blob)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestPHICipher_NonceUniqueness(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	plaintext := []byte("same plaintext")
	blob1, err := cipher.Encrypt(ctx, ring, plaintext)
	require.NoError(t, err)
	blob2, err := cipher.Encrypt(ctx, ring, plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, blob1, blob2, "equal plaintexts must produce distinct ciphertexts")
}

func TestPHICipher_StreamRoundTrip(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	// Large enough for several chunks plus a partial tail.
	plaintext := make([]byte, DefaultStreamChunkSize*3+517)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	var encrypted bytes.Buffer
	require.NoError(t, cipher.EncryptStream(ctx, ring, bytes.NewReader(plaintext), &encrypted))

	var decrypted bytes.Buffer
	require.NoError(t, cipher.DecryptStream(ctx, ring, bytes.NewReader(encrypted.Bytes()), &decrypted))
	assert.Equal(t, plaintext, decrypted.Bytes())
}

func TestPHICipher_StreamTampered(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	plaintext := make([]byte, DefaultStreamChunkSize+100)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	var encrypted bytes.Buffer
	require.NoError(t, cipher.EncryptStream(ctx, ring, bytes.NewReader(plaintext), &encrypted))

	tampered := encrypted.Bytes()
	tampered[len(tampered)-1] ^= 0x01

	var decrypted bytes.Buffer
	err = cipher.DecryptStream(ctx, ring, bytes.NewReader(tampered), &decrypted)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestPHICipher_StreamTruncated(t *testing.T) {
	cipher, ring := newTestCipher(t)
	ctx := context.Background()

	var encrypted bytes.Buffer
	require.NoError(t, cipher.EncryptStream(ctx, ring, bytes.NewReader([]byte("document body")), &encrypted))

	truncated := encrypted.Bytes()[:encrypted.Len()-5]

	var decrypted bytes.Buffer
	err := cipher.DecryptStream(ctx, ring, bytes.NewReader(truncated), &decrypted)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
