package vault

import (
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
)

var ErrSecretNotFound = errors.New("vault: secret not found")

type Vault struct {
	SecretPath string
	*api.Client
}

func New(token, address, secretPath string) (*Vault, error) {
	config := &api.Config{
		Address: address,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("new: error initializing vault: %w", err)
	}

	client.SetToken(token)

	status, err := client.Sys().SealStatus()
	if err != nil {
		return nil, fmt.Errorf("new: error getting seal status: %w", err)
	}
	if status.Sealed {
		return nil, fmt.Errorf("new: vault at %s is sealed", address)
	}

	return &Vault{SecretPath: secretPath, Client: client}, nil
}

// Secret reads one string value from the KV secret at SecretPath. Both the v1 layout and the
// v2 layout, which nests values under "data", are accepted.
func (v *Vault) Secret(key string) (string, error) {
	secret, err := v.Logical().Read(v.SecretPath)
	if err != nil {
		return "", fmt.Errorf("secret: unable to read %s: %w", v.SecretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret: %w: %s", ErrSecretNotFound, v.SecretPath)
	}

	data := secret.Data
	if nested, ok := data["data"].(map[string]interface{}); ok {
		data = nested
	}

	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("secret: %w: %s/%s", ErrSecretNotFound, v.SecretPath, key)
	}
	return value, nil
}
