package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads and validates the YAML configuration file.
// A missing file is not an error: an empty config is returned with a
// warning so a first run starts from a blank provider list.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Warn("config file not found, starting with empty provider list")
			return &Config{Providers: []Provider{}}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, errUnmarshal)
	}
	if errValidate := validateStructure(cfg); errValidate != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, errValidate)
	}
	if cfg.Providers == nil {
		cfg.Providers = []Provider{}
	}
	return cfg, nil
}

func validateStructure(cfg *Config) error {
	for i, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d missing name", i)
		}
		if p.Type == "" {
			return fmt.Errorf("provider %q missing type", p.Name)
		}
		if len(p.Models) == 0 {
			return fmt.Errorf("provider %q missing models", p.Name)
		}
	}
	return nil
}

// SaveConfig writes the configuration atomically: an existing file is
// first copied to a .bak sibling (best effort), the new content is
// marshalled to a temp file in the same directory, then renamed onto
// the destination so a concurrent reader never observes a torn write.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if prev, errRead := os.ReadFile(path); errRead == nil {
		if errBak := os.WriteFile(path+".bak", prev, 0o644); errBak != nil {
			log.WithError(errBak).WithField("path", path+".bak").Warn("failed to write config backup")
		}
	}

	if errDir := os.MkdirAll(filepath.Dir(path), 0o755); errDir != nil {
		return fmt.Errorf("create config dir: %w", errDir)
	}
	tmpPath := path + ".tmp"
	if errWrite := os.WriteFile(tmpPath, data, 0o644); errWrite != nil {
		return fmt.Errorf("write temp config: %w", errWrite)
	}
	if errRename := os.Rename(tmpPath, path); errRename != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp config: %w", errRename)
	}
	return nil
}

// LoadEnv reads the dotenv file into a map. A missing file yields an
// empty map rather than an error.
func LoadEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env %s: %w", path, err)
	}
	return values, nil
}

// SaveEnv merges updates into the dotenv file and rewrites it
// atomically through the same temp-then-rename sequence as the YAML
// path, so a partial multi-key update is never observable. godotenv
// quotes values on marshal, keeping special characters intact.
func SaveEnv(path string, updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}
	current, err := LoadEnv(path)
	if err != nil {
		return err
	}
	for key, value := range updates {
		if !AllowedEnvVars[key] {
			return fmt.Errorf("env var %q is not allow-listed", key)
		}
		current[key] = value
	}

	content, errMarshal := godotenv.Marshal(current)
	if errMarshal != nil {
		return fmt.Errorf("marshal env: %w", errMarshal)
	}
	tmpPath := path + ".tmp"
	if errWrite := os.WriteFile(tmpPath, []byte(content+"\n"), 0o600); errWrite != nil {
		return fmt.Errorf("write temp env: %w", errWrite)
	}
	if errRename := os.Rename(tmpPath, path); errRename != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp env: %w", errRename)
	}
	return nil
}
