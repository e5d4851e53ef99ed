// Package config provides configuration management for the proxy web UI.
// It handles loading and persisting the YAML provider configuration and the
// dotenv secrets file, and defines the validated shapes both files carry.
package config

// Config represents the proxy configuration file edited by the web UI.
type Config struct {
	// Providers is the ordered list of upstream provider entries.
	Providers []Provider `yaml:"providers" json:"providers"`

	// ProxyAPIKeys lists the keys accepted by the UI's API-key gate.
	ProxyAPIKeys []string `yaml:"proxy_api_keys,omitempty" json:"proxy_api_keys,omitempty"`
}

// Provider describes a single upstream LLM provider entry.
type Provider struct {
	// Name uniquely identifies the provider ([a-zA-Z0-9_-]+).
	Name string `yaml:"name" json:"name"`

	// Type is one of the supported provider types (see ProviderTypes).
	Type string `yaml:"type" json:"type"`

	// APIKeyEnv is the allow-listed environment variable name holding
	// the provider's API key. The key value itself lives in the dotenv
	// file, never in this file.
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`

	// BaseURL optionally overrides the provider's API endpoint.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Models is the non-empty list of model IDs served by this provider.
	Models []string `yaml:"models" json:"models"`

	// Enabled toggles whether the proxy may route to this provider.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Forced marks the single provider preferred over normal selection.
	// At most one provider in a config may set it.
	Forced bool `yaml:"forced" json:"forced"`

	// Priority orders provider selection, 0-1000.
	Priority int `yaml:"priority" json:"priority"`
}

// ServerSettings holds the proxy server settings editable from the form.
type ServerSettings struct {
	// Port is the proxy listen port, 1-65535. Zero means unset.
	Port int

	// APIKeyHeader is the header name the proxy reads client keys from.
	// Defaults to "X-API-Key".
	APIKeyHeader string
}

// DefaultAPIKeyHeader is used when no header name has been configured.
const DefaultAPIKeyHeader = "X-API-Key"

// ProviderTypes is the fixed set of supported provider types.
var ProviderTypes = map[string]bool{
	"openai":     true,
	"anthropic":  true,
	"grok":       true,
	"blackbox":   true,
	"openrouter": true,
	"perplexity": true,
	"cohere":     true,
}

// Environment variable names the UI is permitted to write.
const (
	EnvProxyPort         = "PROXY_API_PORT"
	EnvProxyAPIKeyHeader = "PROXY_API_API_KEY_HEADER"
)

// AllowedEnvVars is the fixed allow-list of environment variable names
// the UI may read or write, guarding against arbitrary environment
// manipulation via the form.
var AllowedEnvVars = map[string]bool{
	"OPENAI_API_KEY":     true,
	"ANTHROPIC_API_KEY":  true,
	"GROK_API_KEY":       true,
	"BLACKBOX_API_KEY":   true,
	"OPENROUTER_API_KEY": true,
	"PERPLEXITY_API_KEY": true,
	"COHERE_API_KEY":     true,
	EnvProxyPort:         true,
	EnvProxyAPIKeyHeader: true,
}
