package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/quickchess/internal/dependencies/random"
	"github.com/mcoot/quickchess/internal/model"
)

// identityAlphabet is the character set for generated identities
const identityAlphabet = "0123456789"

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	Identity     string
	IdentityFile string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("QUICKCHESS_SERVER", "http://localhost:8080"),
		Identity:     os.Getenv("QUICKCHESS_IDENTITY"),
		IdentityFile: getEnvOrDefault("QUICKCHESS_IDENTITY_FILE", defaultIdentityFile()),
		Output:       "text",
		Verbose:      false,
	}
}

// LoadIdentity loads the identity from file if not already set,
// generating and saving a fresh one when none exists. An identity
// supplied explicitly (flag or env) must already be well-formed; the
// server would only reject it anyway.
func (c *Config) LoadIdentity() error {
	if c.Identity != "" {
		if !model.IsValidPlayerID(model.PlayerID(c.Identity)) {
			return fmt.Errorf("%w: %q", model.ErrInvalidPlayerID, c.Identity)
		}
		return nil
	}

	data, err := os.ReadFile(c.IdentityFile)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if model.IsValidPlayerID(model.PlayerID(id)) {
			c.Identity = id
			return nil
		}
		// Corrupt identity file: fall through and regenerate
	} else if !os.IsNotExist(err) {
		return err
	}

	return c.SaveIdentity(GenerateIdentity())
}

// SaveIdentity saves the identity to the identity file
func (c *Config) SaveIdentity(id string) error {
	c.Identity = id

	dir := filepath.Dir(c.IdentityFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.IdentityFile, []byte(id), 0600)
}

// GenerateIdentity returns a fresh random identity
func GenerateIdentity() string {
	return random.New().String(model.PlayerIDLength, identityAlphabet)
}

// wsURL converts the configured server URL into the websocket endpoint
func wsURL(serverURL string) string {
	u := strings.TrimSuffix(serverURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

func defaultIdentityFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quickchess/identity"
	}
	return filepath.Join(home, ".quickchess", "identity")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
