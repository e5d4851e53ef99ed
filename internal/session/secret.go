package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SecretEnvVar overrides the generated secret file when set.
const SecretEnvVar = "WEBUI_SECRET_KEY"

// LoadOrCreateSecret resolves the cookie-signing master secret: the
// WEBUI_SECRET_KEY environment variable wins, otherwise the secret file
// at path is read, and on first run a fresh 64-hex-character secret is
// generated and written there with owner-only permissions.
func LoadOrCreateSecret(path string) ([]byte, error) {
	if env := strings.TrimSpace(os.Getenv(SecretEnvVar)); env != "" {
		return []byte(env), nil
	}

	if data, err := os.ReadFile(path); err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			return []byte(secret), nil
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret file %s: %w", path, err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write secret file %s: %w", path, err)
	}
	log.WithField("path", path).Info("generated new session secret")
	return []byte(secret), nil
}
