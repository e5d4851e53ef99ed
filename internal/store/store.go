// Package store holds the in-memory snapshot of the proxy configuration
// and dotenv files, constructed once at startup and injected into the
// request handlers. Saves go through the store so the snapshot is
// refreshed in place instead of going stale until restart.
package store

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/router-for-me/ProxyConfigUI/internal/config"
)

// Store is the application-level configuration snapshot.
type Store struct {
	mu         sync.RWMutex
	configPath string
	envPath    string
	cfg        *config.Config
	env        map[string]string
}

// New creates a store bound to the given file paths. Call Load before use.
func New(configPath, envPath string) *Store {
	return &Store{
		configPath: configPath,
		envPath:    envPath,
		cfg:        &config.Config{Providers: []config.Provider{}},
		env:        map[string]string{},
	}
}

// Load reads both files into the snapshot. Structural errors in the
// config file are logged and replaced with an empty provider list so
// the UI stays usable for repair.
func (s *Store) Load() error {
	cfg, errConfig := config.LoadConfig(s.configPath)
	if errConfig != nil {
		log.WithError(errConfig).Error("failed to load config, falling back to empty provider list")
		cfg = &config.Config{Providers: []config.Provider{}}
	}
	env, errEnv := config.LoadEnv(s.envPath)
	if errEnv != nil {
		log.WithError(errEnv).Error("failed to load env file, falling back to empty environment")
		env = map[string]string{}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.env = env
	s.mu.Unlock()

	if errConfig != nil {
		return errConfig
	}
	return errEnv
}

// Reload re-reads both files, used after external edits are observed.
func (s *Store) Reload() error {
	return s.Load()
}

// ConfigPath returns the YAML config file path.
func (s *Store) ConfigPath() string { return s.configPath }

// EnvPath returns the dotenv file path.
func (s *Store) EnvPath() string { return s.envPath }

// Config returns a copy of the current config snapshot.
func (s *Store) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := &config.Config{
		Providers:    make([]config.Provider, len(s.cfg.Providers)),
		ProxyAPIKeys: append([]string(nil), s.cfg.ProxyAPIKeys...),
	}
	copy(cfg.Providers, s.cfg.Providers)
	return cfg
}

// Env returns a copy of the current dotenv snapshot.
func (s *Store) Env() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env := make(map[string]string, len(s.env))
	for key, value := range s.env {
		env[key] = value
	}
	return env
}

// ProxyAPIKeys returns the configured valid API keys.
func (s *Store) ProxyAPIKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.cfg.ProxyAPIKeys...)
}

// SaveConfig persists a new provider list and refreshes the snapshot.
// The proxy API key list is carried over from the current snapshot; the
// form does not edit it.
func (s *Store) SaveConfig(providers []config.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := &config.Config{
		Providers:    providers,
		ProxyAPIKeys: s.cfg.ProxyAPIKeys,
	}
	if err := config.SaveConfig(s.configPath, next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// SaveEnv persists env var updates and refreshes the snapshot.
func (s *Store) SaveEnv(updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := config.SaveEnv(s.envPath, updates); err != nil {
		return err
	}
	for key, value := range updates {
		s.env[key] = value
	}
	return nil
}
