package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
marketdata:
  api_url: http://localhost:9101
llm:
  api_url: http://localhost:9102
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Watchlist.Workers != DefaultWorkers {
		t.Fatalf("workers = %d, want %d", cfg.Watchlist.Workers, DefaultWorkers)
	}
	if cfg.Watchlist.ScanLimit != DefaultScanLimit {
		t.Fatalf("scan_limit = %d, want %d", cfg.Watchlist.ScanLimit, DefaultScanLimit)
	}
	if cfg.Watchlist.Cooldown != DefaultCooldown {
		t.Fatalf("cooldown = %v, want %v", cfg.Watchlist.Cooldown, DefaultCooldown)
	}
	if cfg.Notify.Backend != "webhook" || cfg.Notify.Mode != "batched" {
		t.Fatalf("notify defaults = %s/%s", cfg.Notify.Backend, cfg.Notify.Mode)
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	body := `
marketdata:
  api_url: http://localhost:9101
llm:
  api_url: http://localhost:9102
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsWebhookWithoutURL(t *testing.T) {
	body := minimalConfig + `
notify:
  enabled: true
  backend: webhook
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for missing webhook_url")
	}
}

func TestLoadRejectsKafkaBackendWithoutBrokers(t *testing.T) {
	body := minimalConfig + `
notify:
  enabled: true
  backend: kafka
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for missing brokers")
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	body := minimalConfig + `
notify:
  mode: shouting
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for bad mode")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "AAA,BBB")
	t.Setenv("WORKERS", "7")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Watchlist.Symbols) != 2 || cfg.Watchlist.Symbols[0] != "AAA" {
		t.Fatalf("symbols = %v", cfg.Watchlist.Symbols)
	}
	if cfg.Watchlist.Workers != 7 {
		t.Fatalf("workers = %d, want 7", cfg.Watchlist.Workers)
	}
}

func TestCooldownParsesDuration(t *testing.T) {
	body := minimalConfig + `
watchlist:
  cooldown: 1500ms
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Watchlist.Cooldown != 1500*time.Millisecond {
		t.Fatalf("cooldown = %v", cfg.Watchlist.Cooldown)
	}
}
