package awskms

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKMS struct {
	plaintext []byte
	err       error

	gotCiphertext []byte
	gotKeyID      *string
}

func (f *fakeKMS) Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	f.gotCiphertext = params.CiphertextBlob
	f.gotKeyID = params.KeyId
	if f.err != nil {
		return nil, f.err
	}
	return &kms.DecryptOutput{Plaintext: f.plaintext}, nil
}

func TestSecretSource_MasterSecret(t *testing.T) {
	secret := []byte("decrypted-master-secret-32-bytes")
	fake := &fakeKMS{plaintext: secret}
	src := &SecretSource{
		client:     fake,
		ciphertext: []byte("kms-ciphertext"),
		keyID:      "alias/phisec-master",
	}

	got, err := src.MasterSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, secret, got)
	assert.Equal(t, []byte("kms-ciphertext"), fake.gotCiphertext)
	require.NotNil(t, fake.gotKeyID)
	assert.Equal(t, "alias/phisec-master", *fake.gotKeyID)
}

func TestSecretSource_MasterSecret_Errors(t *testing.T) {
	t.Run("kms failure", func(t *testing.T) {
		src := &SecretSource{
			client:     &fakeKMS{err: errors.New("access denied")},
			ciphertext: []byte("kms-ciphertext"),
		}
		_, err := src.MasterSecret(context.Background())
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("empty plaintext", func(t *testing.T) {
		src := &SecretSource{
			client:     &fakeKMS{},
			ciphertext: []byte("kms-ciphertext"),
		}
		_, err := src.MasterSecret(context.Background())
		assert.Error(t, err)
	})
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ciphertext", func(t *testing.T) {
		_, err := New(ctx, Config{})
		assert.Error(t, err)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := New(ctx, Config{EncryptedSecret: "not base64 !!!"})
		assert.Error(t, err)
	})

	t.Run("valid base64 is accepted", func(t *testing.T) {
		cfg := Config{
			EncryptedSecret: base64.StdEncoding.EncodeToString([]byte("ciphertext")),
			Region:          "us-east-1",
		}
		src, err := New(ctx, cfg)
		require.NoError(t, err)
		assert.NotNil(t, src)
	})
}
