package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "jobfill"
	tokenAccount   = "api_token"
	tokenEnv       = "JOBFILL_API_TOKEN"
)

// SecretStore reads and writes named secrets.
type SecretStore interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// Keychain stores secrets in the OS keyring and falls back to a 0600 JSON
// file under the data dir when no keyring service is reachable (headless
// Linux, containers).
type Keychain struct {
	path string
}

func NewKeychain() *Keychain {
	return &Keychain{path: secretsFilePath()}
}

func secretsFilePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "jobfill", "secrets.json")
}

func (k *Keychain) Get(service, account string) (string, error) {
	v, err := keyring.Get(service, account)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keyring unavailable, using secrets file", "error", err)
	}
	return k.fileGet(service, account)
}

func (k *Keychain) Set(service, account, value string) error {
	err := keyring.Set(service, account, value)
	if err == nil {
		return nil
	}
	slog.Debug("keyring unavailable, using secrets file", "error", err)
	return k.fileSet(service, account, value)
}

func (k *Keychain) readFile() (map[string]map[string]string, error) {
	data, err := os.ReadFile(k.path)
	if err != nil {
		return nil, err
	}
	var secrets map[string]map[string]string
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	return secrets, nil
}

func (k *Keychain) fileGet(service, account string) (string, error) {
	secrets, err := k.readFile()
	if err != nil {
		return "", fmt.Errorf("secret store not available: %w", err)
	}
	val, ok := secrets[service][account]
	if !ok {
		return "", fmt.Errorf("account %q not found in service %q", account, service)
	}
	return val, nil
}

func (k *Keychain) fileSet(service, account, value string) error {
	secrets, _ := k.readFile()
	if secrets == nil {
		secrets = make(map[string]map[string]string)
	}
	if secrets[service] == nil {
		secrets[service] = make(map[string]string)
	}
	secrets[service][account] = value

	if err := os.MkdirAll(filepath.Dir(k.path), 0o700); err != nil {
		return fmt.Errorf("creating secrets dir: %w", err)
	}
	out, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(k.path, out, 0o600)
}

// GetAPIToken returns the bearer token guarding the local API. The
// JOBFILL_API_TOKEN environment variable wins; otherwise the token is read
// from the secret store and generated on first use.
func GetAPIToken(s SecretStore) (string, error) {
	if tok := os.Getenv(tokenEnv); tok != "" {
		return tok, nil
	}
	if tok, err := s.Get(keyringService, tokenAccount); err == nil && tok != "" {
		return tok, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	tok := hex.EncodeToString(buf)
	if err := s.Set(keyringService, tokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return tok, nil
}
