package form

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func validRow() url.Values {
	return url.Values{
		"provider_name_0": {"openai"},
		"type_0":          {"openai"},
		"api_key_env_0":   {"OPENAI_API_KEY"},
		"api_key_value_0": {"sk-test"},
		"models_0":        {"gpt-4,gpt-4-turbo"},
		"priority_0":      {"10"},
		"enabled_0":       {"on"},
	}
}

func TestParseProvidersValidRow(t *testing.T) {
	providers, envUpdates, err := ParseProviders(validRow())
	if err != nil {
		t.Fatalf("ParseProviders: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("len(providers) = %d, want 1", len(providers))
	}
	p := providers[0]
	if p.Name != "openai" || p.Type != "openai" || p.APIKeyEnv != "OPENAI_API_KEY" {
		t.Fatalf("provider = %+v, want submitted identity fields", p)
	}
	if len(p.Models) != 2 || p.Models[0] != "gpt-4" || p.Models[1] != "gpt-4-turbo" {
		t.Fatalf("models = %v, want [gpt-4 gpt-4-turbo]", p.Models)
	}
	if p.Priority != 10 || !p.Enabled || p.Forced {
		t.Fatalf("provider flags = %+v, want priority 10, enabled, not forced", p)
	}
	if envUpdates["OPENAI_API_KEY"] != "sk-test" {
		t.Fatalf("envUpdates = %v, want OPENAI_API_KEY=sk-test", envUpdates)
	}
}

func TestParseProvidersRowValidation(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(url.Values)
		wantMessage string
	}{
		{
			name:        "empty name",
			mutate:      func(v url.Values) { v.Set("provider_name_0", "  ") },
			wantMessage: "name is required",
		},
		{
			name:        "bad name pattern",
			mutate:      func(v url.Values) { v.Set("provider_name_0", "open ai!") },
			wantMessage: "may only contain",
		},
		{
			name:        "unsupported type",
			mutate:      func(v url.Values) { v.Set("type_0", "bedrock") },
			wantMessage: "unsupported provider type",
		},
		{
			name:        "env var bad pattern",
			mutate:      func(v url.Values) { v.Set("api_key_env_0", "1BAD NAME") },
			wantMessage: "invalid API key variable name",
		},
		{
			name:        "env var not allow-listed",
			mutate:      func(v url.Values) { v.Set("api_key_env_0", "EVIL_VAR") },
			wantMessage: "not allow-listed",
		},
		{
			name:        "priority not an integer",
			mutate:      func(v url.Values) { v.Set("priority_0", "ten") },
			wantMessage: "priority must be an integer",
		},
		{
			name:        "priority out of range",
			mutate:      func(v url.Values) { v.Set("priority_0", "1001") },
			wantMessage: "priority must be an integer",
		},
		{
			name:        "models missing",
			mutate:      func(v url.Values) { v.Del("models_0") },
			wantMessage: "no valid models specified",
		},
		{
			name:        "models only separators",
			mutate:      func(v url.Values) { v.Set("models_0", " , ,, ") },
			wantMessage: "no valid models specified",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := validRow()
			tc.mutate(values)
			_, _, err := ParseProviders(values)
			if err == nil {
				t.Fatalf("ParseProviders(%s) error = nil, want validation failure", tc.name)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tc.wantMessage) {
				t.Fatalf("error = %q, want substring %q", err.Error(), tc.wantMessage)
			}
		})
	}
}

func TestParseProvidersForcedSelectorIsAuthoritative(t *testing.T) {
	values := validRow()
	values.Set("provider_name_1", "anthropic")
	values.Set("type_1", "anthropic")
	values.Set("api_key_env_1", "ANTHROPIC_API_KEY")
	values.Set("models_1", "claude-sonnet-4")
	// Per-row forced flags on every row must be ignored.
	values.Set("forced_0", "on")
	values.Set("forced_1", "on")
	values.Set("forced_provider", "anthropic")

	providers, _, err := ParseProviders(values)
	if err != nil {
		t.Fatalf("ParseProviders: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("len(providers) = %d, want 2", len(providers))
	}
	forcedCount := 0
	for _, p := range providers {
		if p.Forced {
			forcedCount++
			if p.Name != "anthropic" {
				t.Fatalf("forced provider = %q, want anthropic", p.Name)
			}
		}
	}
	if forcedCount != 1 {
		t.Fatalf("forced count = %d, want exactly 1", forcedCount)
	}
}

func TestParseProvidersNoForcedSelector(t *testing.T) {
	providers, _, err := ParseProviders(validRow())
	if err != nil {
		t.Fatalf("ParseProviders: %v", err)
	}
	if providers[0].Forced {
		t.Fatalf("forced = true with no selector submitted")
	}
}

func TestParseProvidersDuplicateName(t *testing.T) {
	values := validRow()
	values.Set("provider_name_1", "openai")
	values.Set("type_1", "openai")
	values.Set("api_key_env_1", "OPENAI_API_KEY")
	values.Set("models_1", "gpt-4")
	if _, _, err := ParseProviders(values); err == nil {
		t.Fatalf("ParseProviders(duplicate) error = nil, want rejection")
	}
}

func TestParseProvidersStopsAtMissingIndex(t *testing.T) {
	values := validRow()
	// Index 2 present but index 1 absent: the scan stops at the gap.
	values.Set("provider_name_2", "anthropic")
	values.Set("type_2", "anthropic")
	values.Set("api_key_env_2", "ANTHROPIC_API_KEY")
	values.Set("models_2", "claude-sonnet-4")

	providers, _, err := ParseProviders(values)
	if err != nil {
		t.Fatalf("ParseProviders: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("len(providers) = %d, want 1 (scan stops at first gap)", len(providers))
	}
}

func TestParseServerSettings(t *testing.T) {
	testCases := []struct {
		name     string
		port     string
		header   string
		wantErr  bool
		wantPort int
	}{
		{name: "empty is fine", wantPort: 0},
		{name: "valid port", port: "8099", wantPort: 8099},
		{name: "port zero", port: "0", wantErr: true},
		{name: "port too high", port: "65536", wantErr: true},
		{name: "port not a number", port: "eighty", wantErr: true},
		{name: "bad header", header: "X-API Key", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			if tc.port != "" {
				values.Set("server_port", tc.port)
			}
			if tc.header != "" {
				values.Set("api_key_header", tc.header)
			}
			settings, envUpdates, err := ParseServerSettings(values)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseServerSettings(%s) error = nil, want failure", tc.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseServerSettings(%s): %v", tc.name, err)
			}
			if settings.Port != tc.wantPort {
				t.Fatalf("port = %d, want %d", settings.Port, tc.wantPort)
			}
			if settings.APIKeyHeader != "X-API-Key" {
				t.Fatalf("header = %q, want default X-API-Key", settings.APIKeyHeader)
			}
			if tc.wantPort != 0 && envUpdates["PROXY_API_PORT"] != tc.port {
				t.Fatalf("envUpdates = %v, want PROXY_API_PORT=%s", envUpdates, tc.port)
			}
		})
	}
}

func TestParseServerSettingsCustomHeader(t *testing.T) {
	values := url.Values{"api_key_header": {"X-Proxy-Key"}}
	settings, envUpdates, err := ParseServerSettings(values)
	if err != nil {
		t.Fatalf("ParseServerSettings: %v", err)
	}
	if settings.APIKeyHeader != "X-Proxy-Key" {
		t.Fatalf("header = %q, want X-Proxy-Key", settings.APIKeyHeader)
	}
	if envUpdates["PROXY_API_API_KEY_HEADER"] != "X-Proxy-Key" {
		t.Fatalf("envUpdates = %v, want header var set", envUpdates)
	}
}

func TestValidateEnvVarName(t *testing.T) {
	if err := ValidateEnvVarName("OPENAI_API_KEY"); err != nil {
		t.Fatalf("ValidateEnvVarName(allow-listed): %v", err)
	}
	if err := ValidateEnvVarName("EVIL_VAR"); err == nil {
		t.Fatalf("ValidateEnvVarName(EVIL_VAR) = nil, want allow-list rejection")
	}
	if err := ValidateEnvVarName("not a name"); err == nil {
		t.Fatalf("ValidateEnvVarName(malformed) = nil, want pattern rejection")
	}
}
