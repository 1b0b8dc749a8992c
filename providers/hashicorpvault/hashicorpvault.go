// Package hashicorpvault implements the phisec SecretSource against
// HashiCorp Vault's KV v2 engine.
package hashicorpvault

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"
)

// SecretSource reads the master secret from a Vault KV v2 path. The secret
// is stored base64 encoded under the "value" key:
//
//	vault kv put secret/phisec/master value=<base64 secret>
type SecretSource struct {
	client *api.Client
	path   string
}

// New creates a SecretSource reading from the given KV v2 path, for
// example "secret/data/phisec/master".
//
// Connection and authentication come from the environment: VAULT_ADDR,
// VAULT_NAMESPACE, VAULT_TOKEN, and AppRole credentials through
// VAULT_ROLE_ID/VAULT_SECRET_ID. When AppRole credentials are present they
// take precedence over a static token.
func New(path string) (*SecretSource, error) {
	if path == "" {
		return nil, fmt.Errorf("vault secret path is required")
	}

	config := api.DefaultConfig()
	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		config.Address = addr
	}
	config.HttpClient.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	// AppRole authentication
	roleID := os.Getenv("VAULT_ROLE_ID")
	secretID := os.Getenv("VAULT_SECRET_ID")
	if roleID != "" && secretID != "" {
		resp, err := client.Logical().Write("auth/approle/login", map[string]interface{}{
			"role_id":   roleID,
			"secret_id": secretID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to login with AppRole: %w", err)
		}
		if resp.Auth == nil {
			return nil, fmt.Errorf("no auth info returned from AppRole login")
		}
		client.SetToken(resp.Auth.ClientToken)
	}

	return &SecretSource{client: client, path: path}, nil
}

// MasterSecret reads and decodes the master secret.
func (s *SecretSource) MasterSecret(ctx context.Context) ([]byte, error) {
	secret, err := s.client.Logical().ReadWithContext(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from Vault at %s: %w", s.path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at %s", s.path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret format at %s", s.path)
	}
	value, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("master secret not found or invalid format at %s", s.path)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("master secret at %s is not valid base64: %w", s.path, err)
	}
	return decoded, nil
}
