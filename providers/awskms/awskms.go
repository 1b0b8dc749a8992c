// Package awskms implements the phisec SecretSource on AWS KMS.
//
// The master secret is envelope encrypted: an operator encrypts it once
// with a KMS key and ships only the resulting ciphertext in deployment
// configuration. At startup this provider calls kms:Decrypt to recover the
// plaintext secret, so the plaintext never rests outside process memory.
package awskms

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// kmsClient interface for AWS KMS operations (allows mocking)
type kmsClient interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// Config holds configuration for the KMS secret source.
type Config struct {
	// EncryptedSecret is the base64 KMS ciphertext of the master secret.
	// Required.
	EncryptedSecret string

	// KeyID optionally pins the KMS key the ciphertext must have been
	// encrypted with. Symmetric KMS ciphertexts embed their key, so this
	// is a check, not a lookup.
	KeyID string

	// Region is the AWS region (e.g., "us-east-1").
	// If empty, uses AWS_REGION environment variable or AWS config file.
	Region string

	// AWSConfig is an optional pre-configured AWS config.
	// If provided, Region is ignored.
	AWSConfig *aws.Config
}

// SecretSource implements phisec.SecretSource using AWS KMS.
type SecretSource struct {
	client     kmsClient
	ciphertext []byte
	keyID      string
}

// New creates a SecretSource from the configuration.
//
// Usage:
//
//	src, err := awskms.New(ctx, awskms.Config{
//	    EncryptedSecret: os.Getenv("PHISEC_ENCRYPTED_MASTER_SECRET"),
//	    Region:          "us-east-1",
//	})
func New(ctx context.Context, cfg Config) (*SecretSource, error) {
	if cfg.EncryptedSecret == "" {
		return nil, fmt.Errorf("encrypted master secret is required")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cfg.EncryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("encrypted master secret is not valid base64: %w", err)
	}

	var awsCfg aws.Config
	if cfg.AWSConfig != nil {
		awsCfg = *cfg.AWSConfig
	} else {
		opts := []func(*awsconfig.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	return &SecretSource{
		client:     kms.NewFromConfig(awsCfg),
		ciphertext: ciphertext,
		keyID:      cfg.KeyID,
	}, nil
}

// MasterSecret decrypts and returns the master secret.
func (s *SecretSource) MasterSecret(ctx context.Context) ([]byte, error) {
	input := &kms.DecryptInput{
		CiphertextBlob: s.ciphertext,
	}
	if s.keyID != "" {
		input.KeyId = aws.String(s.keyID)
	}

	out, err := s.client.Decrypt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master secret with KMS: %w", err)
	}
	if len(out.Plaintext) == 0 {
		return nil, fmt.Errorf("KMS returned an empty plaintext")
	}
	return out.Plaintext, nil
}
