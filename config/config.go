package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"focus_group_generator/provider"
)

// Config holds application settings. Provider credentials may come from the file
// or from the environment variable named by api_key_env.
type Config struct {
	// Provider forces one provider; empty means use the language recommendation.
	Provider       string                    `json:"provider,omitempty" yaml:"provider" toml:"provider"`
	Providers      map[string]ProviderConfig `json:"providers,omitempty" yaml:"providers" toml:"providers"`
	ServerAddr     string                    `json:"server_addr,omitempty" yaml:"server_addr" toml:"server_addr"`
	LogLevel       string                    `json:"log_level,omitempty" yaml:"log_level" toml:"log_level"`
	TablesPath     string                    `json:"tables_path,omitempty" yaml:"tables_path" toml:"tables_path"`
	TimeoutSeconds int                       `json:"timeout_seconds,omitempty" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// ProviderConfig is the per-provider model and credential configuration.
type ProviderConfig struct {
	APIKey    string `json:"api_key,omitempty" yaml:"api_key" toml:"api_key"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env" toml:"api_key_env"`
	Model     string `json:"model,omitempty" yaml:"model" toml:"model"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url" toml:"base_url"`
}

var defaultKeyEnv = map[provider.Kind]string{
	provider.OpenAI:    "OPENAI_API_KEY",
	provider.Anthropic: "ANTHROPIC_API_KEY",
	provider.Google:    "GOOGLE_API_KEY",
	provider.Cohere:    "COHERE_API_KEY",
	provider.Mistral:   "MISTRAL_API_KEY",
}

// Default returns a Config with every catalogued provider present and reading
// its key from the conventional environment variable.
func Default() *Config {
	cfg := &Config{
		Providers:      make(map[string]ProviderConfig, len(defaultKeyEnv)),
		ServerAddr:     ":8080",
		LogLevel:       "info",
		TimeoutSeconds: 300,
	}
	cfg.fillProviderDefaults()
	return cfg
}

// Load reads a JSON, YAML or TOML file chosen by extension. Missing fields keep
// their defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .json, .yaml or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.fillProviderDefaults()
	return cfg, nil
}

// fillProviderDefaults adds missing provider entries and env var names.
func (c *Config) fillProviderDefaults() {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig, len(defaultKeyEnv))
	}
	for id, env := range defaultKeyEnv {
		pc := c.Providers[string(id)]
		if pc.APIKeyEnv == "" {
			pc.APIKeyEnv = env
		}
		c.Providers[string(id)] = pc
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := provider.ParseKind(c.Provider); err != nil {
			return fmt.Errorf("provider: %w", err)
		}
	}
	for name := range c.Providers {
		if _, ok := provider.Lookup(provider.Kind(name)); !ok {
			return fmt.Errorf("providers.%s: unknown provider", name)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0, got %d", c.TimeoutSeconds)
	}

	if c.TablesPath != "" {
		if _, err := os.Stat(c.TablesPath); err != nil {
			return fmt.Errorf("tables_path: %w", err)
		}
	}
	return nil
}

// ProviderSettings returns the settings for id.
func (c *Config) ProviderSettings(id provider.Kind) ProviderConfig {
	return c.Providers[string(id)]
}

// Credential returns the api key for id: the literal api_key when set,
// otherwise the value of its environment variable.
func (c *Config) Credential(id provider.Kind) string {
	pc := c.ProviderSettings(id)
	if pc.APIKey != "" {
		return pc.APIKey
	}
	if pc.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(pc.APIKeyEnv))
}

// GatewayOptions turns configured base URLs into gateway options.
func (c *Config) GatewayOptions() []provider.Option {
	var opts []provider.Option
	for name, pc := range c.Providers {
		if pc.BaseURL != "" {
			opts = append(opts, provider.WithBaseURL(provider.Kind(name), pc.BaseURL))
		}
	}
	return opts
}

// Timeout is the per-generation deadline; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
