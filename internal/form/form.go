// Package form converts submitted configuration form fields into
// validated provider and server-setting records. Provider rows arrive
// with index-suffixed field names (provider_name_0, type_0, ...); the
// row count is implicit in which suffixes are present.
package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/router-for-me/ProxyConfigUI/internal/config"
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	envVarPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	headerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

const (
	minPriority = 0
	maxPriority = 1000
)

// ValidationError carries a user-facing message for a rejected field.
// It aborts the save; nothing is persisted when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func rowError(index int, format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf("Provider %d: %s", index+1, fmt.Sprintf(format, args...))}
}

// ParseProviders walks provider rows by increasing index while the
// provider_name_{i} field is present, validating each row in order.
// The first failing rule aborts with a ValidationError. The returned
// env map holds the submitted non-empty API key values keyed by their
// allow-listed env var names.
//
// The forced flag is derived solely from the single forced_provider
// selector; per-row forced fields are ignored, so at most one provider
// comes back forced.
func ParseProviders(values url.Values) ([]config.Provider, map[string]string, error) {
	providers := []config.Provider{}
	envUpdates := map[string]string{}
	seenNames := map[string]bool{}
	forcedName := strings.TrimSpace(values.Get("forced_provider"))

	for i := 0; values.Has(fmt.Sprintf("provider_name_%d", i)); i++ {
		field := func(prefix string) string {
			return strings.TrimSpace(values.Get(fmt.Sprintf("%s_%d", prefix, i)))
		}

		name := field("provider_name")
		if name == "" {
			return nil, nil, rowError(i, "name is required")
		}
		if !namePattern.MatchString(name) {
			return nil, nil, rowError(i, "name %q may only contain letters, digits, underscores and dashes", name)
		}
		if seenNames[name] {
			return nil, nil, rowError(i, "duplicate provider name %q", name)
		}
		seenNames[name] = true

		providerType := field("type")
		if !config.ProviderTypes[providerType] {
			return nil, nil, rowError(i, "unsupported provider type %q", providerType)
		}

		apiKeyEnv := field("api_key_env")
		if !envVarPattern.MatchString(apiKeyEnv) {
			return nil, nil, rowError(i, "invalid API key variable name %q", apiKeyEnv)
		}
		if !config.AllowedEnvVars[apiKeyEnv] {
			return nil, nil, rowError(i, "API key variable %q is not allow-listed", apiKeyEnv)
		}

		priority := 0
		if raw := field("priority"); raw != "" {
			parsed, errParse := strconv.Atoi(raw)
			if errParse != nil || parsed < minPriority || parsed > maxPriority {
				return nil, nil, rowError(i, "priority must be an integer between %d and %d", minPriority, maxPriority)
			}
			priority = parsed
		}

		models := splitModels(field("models"))
		if len(models) == 0 {
			return nil, nil, rowError(i, "no valid models specified")
		}

		if apiKeyValue := field("api_key_value"); apiKeyValue != "" {
			envUpdates[apiKeyEnv] = apiKeyValue
		}

		providers = append(providers, config.Provider{
			Name:      name,
			Type:      providerType,
			APIKeyEnv: apiKeyEnv,
			BaseURL:   field("base_url"),
			Models:    models,
			Enabled:   isChecked(field("enabled")),
			Forced:    forcedName != "" && name == forcedName,
			Priority:  priority,
		})
	}

	return providers, envUpdates, nil
}

// ParseServerSettings validates the optional port and API key header
// fields and returns the env var updates they imply.
func ParseServerSettings(values url.Values) (config.ServerSettings, map[string]string, error) {
	settings := config.ServerSettings{APIKeyHeader: config.DefaultAPIKeyHeader}
	envUpdates := map[string]string{}

	if raw := strings.TrimSpace(values.Get("server_port")); raw != "" {
		port, errParse := strconv.Atoi(raw)
		if errParse != nil || port < 1 || port > 65535 {
			return settings, nil, &ValidationError{Message: "Server port must be an integer between 1 and 65535"}
		}
		settings.Port = port
		envUpdates[config.EnvProxyPort] = strconv.Itoa(port)
	}

	if raw := strings.TrimSpace(values.Get("api_key_header")); raw != "" {
		if !headerPattern.MatchString(raw) {
			return settings, nil, &ValidationError{Message: fmt.Sprintf("Invalid API key header name %q", raw)}
		}
		settings.APIKeyHeader = raw
		envUpdates[config.EnvProxyAPIKeyHeader] = raw
	}

	return settings, envUpdates, nil
}

// ValidateEnvVarName checks a single env var name against the
// identifier pattern and the allow-list, used by the set_key endpoint.
func ValidateEnvVarName(name string) error {
	if !envVarPattern.MatchString(name) {
		return &ValidationError{Message: fmt.Sprintf("Invalid environment variable name %q", name)}
	}
	if !config.AllowedEnvVars[name] {
		return &ValidationError{Message: fmt.Sprintf("Environment variable %q is not allow-listed", name)}
	}
	return nil
}

func splitModels(raw string) []string {
	models := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			models = append(models, trimmed)
		}
	}
	return models
}

func isChecked(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
