package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 5000)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("STOCKBOT_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_PlatformPortEnv(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d after PORT override, want %d", cfg.Server.Port, 8081)
	}
}

func TestConfig_StockbotPortBeatsPlatformPort(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STOCKBOT_PORT", "9091")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9091 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9091)
	}
}

func TestConfig_EODHDKeyEnvOverride(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.EODHD.APIKey != "from-env" {
		t.Errorf("EODHD.APIKey = %q, want %q", cfg.Clients.EODHD.APIKey, "from-env")
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := NewDefaultConfig()

	if got := cfg.Clients.EODHD.GetRequestInterval(); got != 200*time.Millisecond {
		t.Errorf("GetRequestInterval = %v, want 200ms", got)
	}
	if got := cfg.Clients.EODHD.GetTimeout(); got != 30*time.Second {
		t.Errorf("GetTimeout = %v, want 30s", got)
	}
	if got := cfg.Cache.GetProviderTTL(); got != time.Hour {
		t.Errorf("GetProviderTTL = %v, want 1h", got)
	}
	if got := cfg.Insight.GetRetryBackoff(); got != time.Second {
		t.Errorf("GetRetryBackoff = %v, want 1s", got)
	}
}

func TestConfig_InvalidDurationFallsBack(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Insight.RetryBackoff = "soon"
	cfg.Cache.ProviderTTL = "-5m"

	if got := cfg.Insight.GetRetryBackoff(); got != time.Second {
		t.Errorf("GetRetryBackoff = %v, want fallback 1s", got)
	}
	if got := cfg.Cache.GetProviderTTL(); got != time.Hour {
		t.Errorf("GetProviderTTL = %v, want fallback 1h", got)
	}
}

func TestLoadConfig_FileMerge(t *testing.T) {
	for _, name := range []string{"PORT", "STOCKBOT_PORT", "STOCKBOT_ENV", "STOCKBOT_NARRATIVE_PROVIDER", "STOCKBOT_EODHD_BASE_URL"} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "stockbot.toml")
	content := `
environment = "production"

[server]
port = 7070

[narrative]
provider = "Claude"

[cache]
search_size = 0
provider_ttl = "30m"

[clients.eodhd]
default_exchange = "au"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Narrative.Provider != "claude" {
		t.Errorf("Narrative.Provider = %q, want %q", cfg.Narrative.Provider, "claude")
	}
	if cfg.Cache.SearchSize != 1000 {
		t.Errorf("Cache.SearchSize = %d, want default 1000", cfg.Cache.SearchSize)
	}
	if cfg.Cache.GetProviderTTL() != 30*time.Minute {
		t.Errorf("ProviderTTL = %v, want 30m", cfg.Cache.GetProviderTTL())
	}
	if cfg.Clients.EODHD.DefaultExchange != "AU" {
		t.Errorf("DefaultExchange = %q, want AU", cfg.Clients.EODHD.DefaultExchange)
	}
	// Unset values keep their defaults
	if cfg.Clients.EODHD.BaseURL != "https://eodhd.com/api" {
		t.Errorf("EODHD.BaseURL = %q, want default", cfg.Clients.EODHD.BaseURL)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Insight.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Insight.MaxAttempts)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for invalid TOML")
	}
}

func TestResolveAPIKey_EnvBeatsFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("STOCKBOT_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	key, err := ResolveAPIKey("gemini_api_key", "config-key")
	if err != nil {
		t.Fatalf("ResolveAPIKey failed: %v", err)
	}
	if key != "google-key" {
		t.Errorf("key = %q, want %q", key, "google-key")
	}
}

func TestResolveAPIKey_Missing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("STOCKBOT_ANTHROPIC_API_KEY", "")

	if _, err := ResolveAPIKey("anthropic_api_key", ""); err == nil {
		t.Error("expected error when key is absent everywhere")
	}
}
