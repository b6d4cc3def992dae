// Package common provides shared utilities for stockbot
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for stockbot
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Narrative   NarrativeConfig `toml:"narrative"`
	Cache       CacheConfig     `toml:"cache"`
	Insight     InsightConfig   `toml:"insight"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
	Claude ClaudeConfig `toml:"claude"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RequestInterval string `toml:"request_interval"` // minimum spacing between upstream calls
	Timeout         string `toml:"timeout"`
	DefaultExchange string `toml:"default_exchange"` // appended to tickers without a suffix
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// GetRequestInterval parses and returns the upstream request spacing
func (c *EODHDConfig) GetRequestInterval() time.Duration {
	return parseDuration(c.RequestInterval, 200*time.Millisecond)
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ClaudeConfig holds Anthropic API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// NarrativeConfig selects the generative provider used for the analysis text.
type NarrativeConfig struct {
	Provider string `toml:"provider"` // "gemini" or "claude"
}

// CacheConfig sizes the in-process caches.
type CacheConfig struct {
	SearchSize   int    `toml:"search_size"`
	ProviderSize int    `toml:"provider_size"`
	ProviderTTL  string `toml:"provider_ttl"`
}

// GetProviderTTL parses and returns the provider cache TTL
func (c *CacheConfig) GetProviderTTL() time.Duration {
	return parseDuration(c.ProviderTTL, time.Hour)
}

// InsightConfig tunes the insight orchestrator.
type InsightConfig struct {
	MaxAttempts  int    `toml:"max_attempts"`
	RetryBackoff string `toml:"retry_backoff"`
	RSIWindow    int    `toml:"rsi_window"`
}

// GetRetryBackoff parses and returns the fixed delay between history fetch attempts
func (c *InsightConfig) GetRetryBackoff() time.Duration {
	return parseDuration(c.RetryBackoff, time.Second)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:         "https://eodhd.com/api",
				RequestInterval: "200ms",
				Timeout:         "30s",
				DefaultExchange: "US",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
			Claude: ClaudeConfig{
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 4096,
			},
		},
		Narrative: NarrativeConfig{
			Provider: "gemini",
		},
		Cache: CacheConfig{
			SearchSize:   1000,
			ProviderSize: 100,
			ProviderTTL:  "1h",
		},
		Insight: InsightConfig{
			MaxAttempts:  3,
			RetryBackoff: "1s",
			RSIWindow:    14,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"console"},
			FilePath: "./logs/stockbot.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalize(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKBOT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKBOT_HOST"); host != "" {
		config.Server.Host = host
	}

	// PORT is honoured for platform deployments; STOCKBOT_PORT wins when both are set.
	for _, name := range []string{"PORT", "STOCKBOT_PORT"} {
		if port := os.Getenv(name); port != "" {
			if p, err := strconv.Atoi(port); err == nil {
				config.Server.Port = p
			}
		}
	}

	if level := os.Getenv("STOCKBOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if provider := os.Getenv("STOCKBOT_NARRATIVE_PROVIDER"); provider != "" {
		config.Narrative.Provider = provider
	}

	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		config.Clients.EODHD.APIKey = v
	}
	if v := os.Getenv("STOCKBOT_EODHD_BASE_URL"); v != "" {
		config.Clients.EODHD.BaseURL = v
	}
	if v := os.Getenv("STOCKBOT_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}
	if v := os.Getenv("STOCKBOT_CLAUDE_MODEL"); v != "" {
		config.Clients.Claude.Model = v
	}
}

// normalize clamps values a config file may have zeroed or mistyped.
func normalize(config *Config) {
	config.Narrative.Provider = strings.ToLower(strings.TrimSpace(config.Narrative.Provider))
	if config.Narrative.Provider == "" {
		config.Narrative.Provider = "gemini"
	}
	if config.Cache.SearchSize <= 0 {
		config.Cache.SearchSize = 1000
	}
	if config.Cache.ProviderSize <= 0 {
		config.Cache.ProviderSize = 100
	}
	if config.Insight.MaxAttempts <= 0 {
		config.Insight.MaxAttempts = 3
	}
	if config.Insight.RSIWindow <= 0 {
		config.Insight.RSIWindow = 14
	}
	config.Clients.EODHD.DefaultExchange = strings.ToUpper(strings.TrimSpace(config.Clients.EODHD.DefaultExchange))
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from the environment, falling back to the configured value.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":     {"EODHD_API_KEY", "STOCKBOT_EODHD_API_KEY"},
		"gemini_api_key":    {"GEMINI_API_KEY", "STOCKBOT_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"anthropic_api_key": {"ANTHROPIC_API_KEY", "STOCKBOT_ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
