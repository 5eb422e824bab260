package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend.BaseURL == "" {
		t.Fatalf("default backend URL must not be empty")
	}
	if cfg.Backend.QueryPath != "/query/stream" {
		t.Fatalf("unexpected query path %q", cfg.Backend.QueryPath)
	}
	if cfg.Ingestion.StepsCron == "" {
		t.Fatalf("default steps cron must be set")
	}
	if cfg.Gateway.Port == 0 {
		t.Fatalf("default gateway port must be set")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != DefaultConfig().Backend.BaseURL {
		t.Fatalf("expected defaults for missing file")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"backend": {"base_url": "https://api.example.com"},
		"ingestion": {"enabled": true, "poll_interval_seconds": 30}
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Fatalf("file value not applied, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Ingestion.PollIntervalSeconds != 30 {
		t.Fatalf("expected poll interval 30, got %d", cfg.Ingestion.PollIntervalSeconds)
	}
	// Untouched sections keep their defaults.
	if cfg.Backend.QueryPath != "/query/stream" {
		t.Fatalf("default query path lost, got %q", cfg.Backend.QueryPath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend": {"base_url": "https://file.example.com"}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PMOSD_BACKEND_BASE_URL", "https://env.example.com")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Fatalf("env should override file, got %q", cfg.Backend.BaseURL)
	}
}

func TestEnvRefResolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend": {"base_url": "${PMOS_TEST_BACKEND}"}}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PMOS_TEST_BACKEND", "https://ref.example.com")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://ref.example.com" {
		t.Fatalf("env ref not resolved, got %q", cfg.Backend.BaseURL)
	}
}

func TestEnvRefUnsetKept(t *testing.T) {
	if got := resolveEnvRef("${PMOS_TEST_DOES_NOT_EXIST}"); got != "${PMOS_TEST_DOES_NOT_EXIST}" {
		t.Fatalf("unset ref should pass through, got %q", got)
	}
	if got := resolveEnvRef("plain-value"); got != "plain-value" {
		t.Fatalf("plain value must not change, got %q", got)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Gateway.Port = 19999

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Gateway.Port != 19999 {
		t.Fatalf("expected saved port, got %d", loaded.Gateway.Port)
	}
}

func TestWorkspacePathExpandsHome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assistant.Workspace = "~/.pmosd-test"

	got := cfg.WorkspacePath()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if got != filepath.Join(home, ".pmosd-test") {
		t.Fatalf("expected home expansion, got %q", got)
	}
}
