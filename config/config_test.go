package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus_group_generator/provider"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 5*time.Minute, cfg.Timeout())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	for _, d := range provider.List() {
		assert.NotEmpty(t, cfg.ProviderSettings(d.ID).APIKeyEnv, "%s", d.ID)
	}
	assert.Equal(t, "GOOGLE_API_KEY", cfg.ProviderSettings(provider.Google).APIKeyEnv)
}

func TestLoad_Formats(t *testing.T) {
	files := map[string]string{
		"config.json": `{
  "provider": "mistral",
  "log_level": "debug",
  "providers": {"mistral": {"model": "mistral-small-latest", "api_key": "k"}}
}`,
		"config.yaml": `provider: mistral
log_level: debug
providers:
  mistral:
    model: mistral-small-latest
    api_key: k
`,
		"config.toml": `provider = "mistral"
log_level = "debug"

[providers.mistral]
model = "mistral-small-latest"
api_key = "k"
`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, content))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, "mistral", cfg.Provider)
			assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
			ms := cfg.ProviderSettings(provider.Mistral)
			assert.Equal(t, "mistral-small-latest", ms.Model)
			assert.Equal(t, "MISTRAL_API_KEY", ms.APIKeyEnv, "env default filled after decode")
			assert.Equal(t, ":8080", cfg.ServerAddr, "unset fields keep defaults")
			assert.NotEmpty(t, cfg.ProviderSettings(provider.OpenAI).APIKeyEnv)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeFile(t, "config.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "config.yaml", "provider: [unclosed"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "deepseek" }, "provider"},
		{"unknown provider entry", func(c *Config) { c.Providers["deepseek"] = ProviderConfig{} }, "providers.deepseek"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"missing tables file", func(c *Config) { c.TablesPath = "/definitely/not/here.yaml" }, "tables_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestCredential(t *testing.T) {
	t.Setenv("FG_TEST_COHERE", "  from-env  ")

	cfg := Default()
	cfg.Providers["cohere"] = ProviderConfig{APIKeyEnv: "FG_TEST_COHERE"}
	assert.Equal(t, "from-env", cfg.Credential(provider.Cohere))

	cfg.Providers["cohere"] = ProviderConfig{APIKey: "literal", APIKeyEnv: "FG_TEST_COHERE"}
	assert.Equal(t, "literal", cfg.Credential(provider.Cohere))

	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.Empty(t, cfg.Credential(provider.Anthropic))
}

func TestGatewayOptions(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.GatewayOptions())

	cfg.Providers["google"] = ProviderConfig{BaseURL: "http://localhost:9999"}
	assert.Len(t, cfg.GatewayOptions(), 1)
}
