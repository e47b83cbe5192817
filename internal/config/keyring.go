package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain.
	KeyringService = "Chronicle"

	keyringAPIKeyItem      = "llm-api-key"
	keyringGitHubTokenItem = "github-token"
	keyringSlackTokenItem  = "slack-token"
)

// KeyringManager stores credentials in the OS keychain instead of
// plaintext config files.
type KeyringManager struct {
	logger *logrus.Entry
}

// NewKeyringManager creates a keyring manager.
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: logrus.WithField("component", "keyring"),
	}
}

// SaveAPIKey stores the LLM API key in the OS keychain.
func (km *KeyringManager) SaveAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if err := keyring.Set(KeyringService, keyringAPIKeyItem, apiKey); err != nil {
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("API key saved to keychain")
	return nil
}

// GetAPIKey retrieves the LLM API key. An unset key is not an error.
func (km *KeyringManager) GetAPIKey() (string, error) {
	apiKey, err := keyring.Get(KeyringService, keyringAPIKeyItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return apiKey, nil
}

// DeleteAPIKey removes the LLM API key from the keychain.
func (km *KeyringManager) DeleteAPIKey() error {
	err := keyring.Delete(KeyringService, keyringAPIKeyItem)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	km.logger.Info("API key deleted from keychain")
	return nil
}

// GetGitHubToken retrieves the GitHub token. An unset token is not an error.
func (km *KeyringManager) GetGitHubToken() (string, error) {
	token, err := keyring.Get(KeyringService, keyringGitHubTokenItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return token, nil
}

// SetGitHubToken stores the GitHub token in the keychain.
func (km *KeyringManager) SetGitHubToken(token string) error {
	if token == "" {
		return fmt.Errorf("github token cannot be empty")
	}
	if err := keyring.Set(KeyringService, keyringGitHubTokenItem, token); err != nil {
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("GitHub token saved to keychain")
	return nil
}

// SetSlackToken stores the Slack token in the keychain.
func (km *KeyringManager) SetSlackToken(token string) error {
	if token == "" {
		return fmt.Errorf("slack token cannot be empty")
	}
	if err := keyring.Set(KeyringService, keyringSlackTokenItem, token); err != nil {
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("Slack token saved to keychain")
	return nil
}

// GetSlackToken retrieves the Slack token. An unset token is not an error.
func (km *KeyringManager) GetSlackToken() (string, error) {
	token, err := keyring.Get(KeyringService, keyringSlackTokenItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return token, nil
}

// IsAvailable reports whether the OS keychain works on this system.
// Headless CI systems usually have none.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.WithError(err).Debug("Keychain not available")
		return false
	}
	return true
}

// MaskAPIKey masks a credential for display: first 7 and last 4 chars.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:7], apiKey[len(apiKey)-4:])
}
