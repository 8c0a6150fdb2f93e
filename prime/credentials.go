package prime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

type Credentials struct {
	APIKey string `json:"api_key"`
}

// CredentialsPath is where the provider CLI stores its configuration,
// relative to the user's home directory.
const CredentialsPath = ".prime/config.json"

// LoadCredentials reads the API key from PRIME_API_KEY or, failing that,
// from ~/.prime/config.json.
func LoadCredentials() (Credentials, error) {
	if key := os.Getenv("PRIME_API_KEY"); key != "" {
		return Credentials{APIKey: key}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Credentials{}, fmt.Errorf("resolve home directory: %w", err)
	}
	path := filepath.Join(home, CredentialsPath)

	buf, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials from %s: %w", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(buf, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if creds.APIKey == "" {
		return Credentials{}, fmt.Errorf("credentials file %s has no api_key", path)
	}
	return creds, nil
}

// CheckCredentials verifies that the API key is usable by listing pods once.
func (c *Client) CheckCredentials(ctx context.Context) error {
	_, err := c.ListPods(ctx)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		return fmt.Errorf("API key was rejected; check its permissions, generate a new one "+
			"at https://app.primeintellect.ai/dashboard/tokens, or run 'prime login': %w", err)
	}
	return err
}
