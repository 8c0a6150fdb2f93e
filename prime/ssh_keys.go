package prime

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/ssh"
)

// keyNamePrefix matches the naming used by other tooling registering keys on
// the same account, so a key uploaded once is found again on later runs.
const keyNamePrefix = "skypilot-"

// ListSSHKeys returns the public keys registered on the account.
func (c *Client) ListSSHKeys(ctx context.Context) ([]SSHKey, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/ssh_keys", nil, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []SSHKey `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode ssh key list: %w", err)
	}
	return env.Data, nil
}

// EnsureSSHKey registers pubKey with the account unless an equivalent key is
// already present, and returns the name it is registered under. Keys are
// compared on algorithm and key material only; the trailing comment differs
// between machines and is ignored.
func (c *Client) EnsureSSHKey(ctx context.Context, pubKey string) (string, error) {
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pubKey)); err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}

	keys, err := c.ListSSHKeys(ctx)
	if err != nil {
		return "", err
	}
	want := keyMaterial(pubKey)
	for _, key := range keys {
		if keyMaterial(key.PublicKey) == want {
			return key.Name, nil
		}
	}

	name := keyNamePrefix + keySuffix()
	body := map[string]string{"name": name, "publicKey": pubKey}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/ssh_keys", nil, body); err != nil {
		return "", fmt.Errorf("register ssh key %s: %w", name, err)
	}
	c.log.Info("Registered new SSH key", "name", name)
	return name, nil
}

// keyMaterial reduces an authorized_keys line to its first two fields.
func keyMaterial(pubKey string) string {
	fields := strings.Fields(strings.TrimSpace(pubKey))
	if len(fields) < 2 {
		return strings.Join(fields, " ")
	}
	return fields[0] + " " + fields[1]
}

// keySuffix returns 8 random hex characters.
func keySuffix() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
