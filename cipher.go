package phisec

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/prasunmishra/myhealthvallet-f4sl2v-sub000/internal/security"
)

// Stream framing limits.
const (
	// DefaultStreamChunkSize is the plaintext chunk size used by
	// EncryptStream when the caller does not choose one.
	DefaultStreamChunkSize = 64 * 1024

	// maxStreamChunkSize caps a single decoded chunk so a corrupted length
	// header cannot force an arbitrary allocation.
	maxStreamChunkSize = 10 * 1024 * 1024
)

// PHICipher encrypts and decrypts PHI payloads with AES-256-GCM, embedding
// the KeyRing version in every ciphertext:
//
//	version(2, big-endian) || nonce(12) || ciphertext+tag
//
// The cipher itself is stateless and safe for concurrent use; all key state
// lives in the KeyRing passed to each call. Decrypt failures are terminal,
// never retried, and the offending ciphertext is never logged.
type PHICipher struct {
	hook ObservabilityHook
}

// NewPHICipher creates a PHICipher
func NewPHICipher(opts ...CipherOption) (*PHICipher, error) {
	c := &PHICipher{hook: &NoOpObservabilityHook{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Encrypt encrypts plaintext with the ring's current key and a fresh random
// nonce. Returns ErrEmptyPlaintext on empty input; absence of a PHI value
// is modeled by absence of the ciphertext, not by an encrypted empty string.
func (c *PHICipher) Encrypt(ctx context.Context, ring *KeyRing, plaintext []byte) ([]byte, error) {
	start := time.Now()
	c.hook.OnProcessStart(ctx, "encrypt", nil)

	blob, err := c.encrypt(ring, plaintext)
	c.hook.OnProcessComplete(ctx, "encrypt", time.Since(start), err, nil)
	if err != nil {
		c.hook.OnError(ctx, "encrypt", err, nil)
		return nil, err
	}
	return blob, nil
}

func (c *PHICipher) encrypt(ring *KeyRing, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	version, key := ring.Current()

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM init: %w", err)
	}

	nonce, err := security.GenerateNonce(NonceSize)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, VersionHeaderSize+NonceSize, VersionHeaderSize+NonceSize+len(plaintext)+TagSize)
	binary.BigEndian.PutUint16(blob[:VersionHeaderSize], version)
	copy(blob[VersionHeaderSize:], nonce)

	return gcm.Seal(blob, nonce, plaintext, nil), nil
}

// Decrypt authenticates and decrypts a blob produced by Encrypt, looking up
// the key by the version embedded in the blob. Returns ErrMalformedPayload
// for blobs too short to carry a header, nonce, and tag;
// ErrUnknownKeyVersion when the ring has evicted (or never held) the
// version; ErrAuthenticationFailed when the GCM tag does not verify.
func (c *PHICipher) Decrypt(ctx context.Context, ring *KeyRing, blob []byte) ([]byte, error) {
	start := time.Now()
	c.hook.OnProcessStart(ctx, "decrypt", nil)

	plaintext, err := c.decrypt(ring, blob)
	c.hook.OnProcessComplete(ctx, "decrypt", time.Since(start), err, nil)
	if err != nil {
		c.hook.OnError(ctx, "decrypt", err, nil)
		return nil, err
	}
	return plaintext, nil
}

func (c *PHICipher) decrypt(ring *KeyRing, blob []byte) ([]byte, error) {
	if len(blob) < minCiphertextSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedPayload, len(blob), minCiphertextSize)
	}

	version := binary.BigEndian.Uint16(blob[:VersionHeaderSize])
	key, err := ring.Get(version)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM init: %w", err)
	}

	nonce := blob[VersionHeaderSize : VersionHeaderSize+NonceSize]
	ciphertext := blob[VersionHeaderSize+NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// EncryptStream encrypts r to w in framed chunks for payloads too large to
// hold in memory, such as scanned health documents. Each frame is a 4-byte
// big-endian length followed by a standard Encrypt blob, so every chunk
// carries its own key version and nonce.
func (c *PHICipher) EncryptStream(ctx context.Context, ring *KeyRing, r io.Reader, w io.Writer) error {
	start := time.Now()
	c.hook.OnProcessStart(ctx, "encrypt_stream", nil)

	err := c.encryptStream(ctx, ring, r, w)
	c.hook.OnProcessComplete(ctx, "encrypt_stream", time.Since(start), err, nil)
	if err != nil {
		c.hook.OnError(ctx, "encrypt_stream", err, nil)
	}
	return err
}

func (c *PHICipher) encryptStream(ctx context.Context, ring *KeyRing, r io.Reader, w io.Writer) error {
	buf := make([]byte, DefaultStreamChunkSize)
	header := make([]byte, 4)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			blob, err := c.encrypt(ring, buf[:n])
			if err != nil {
				return err
			}
			binary.BigEndian.PutUint32(header, uint32(len(blob)))
			if _, err := w.Write(header); err != nil {
				return fmt.Errorf("write chunk header: %w", err)
			}
			if _, err := w.Write(blob); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read plaintext: %w", readErr)
		}
	}
}

// DecryptStream reverses EncryptStream, writing the recovered plaintext to
// w. Any malformed frame or failed authentication aborts the stream; w may
// already hold plaintext from earlier verified chunks.
func (c *PHICipher) DecryptStream(ctx context.Context, ring *KeyRing, r io.Reader, w io.Writer) error {
	start := time.Now()
	c.hook.OnProcessStart(ctx, "decrypt_stream", nil)

	err := c.decryptStream(ctx, ring, r, w)
	c.hook.OnProcessComplete(ctx, "decrypt_stream", time.Since(start), err, nil)
	if err != nil {
		c.hook.OnError(ctx, "decrypt_stream", err, nil)
	}
	return err
}

func (c *PHICipher) decryptStream(ctx context.Context, ring *KeyRing, r io.Reader, w io.Writer) error {
	header := make([]byte, 4)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: truncated chunk header", ErrMalformedPayload)
		}

		size := binary.BigEndian.Uint32(header)
		if size < minCiphertextSize || size > maxStreamChunkSize {
			return fmt.Errorf("%w: chunk size %d out of range", ErrMalformedPayload, size)
		}

		blob := make([]byte, size)
		if _, err := io.ReadFull(r, blob); err != nil {
			return fmt.Errorf("%w: truncated chunk", ErrMalformedPayload)
		}

		plaintext, err := c.decrypt(ring, blob)
		if err != nil {
			return err
		}
		if _, err := w.Write(plaintext); err != nil {
			return fmt.Errorf("write plaintext: %w", err)
		}
	}
}
