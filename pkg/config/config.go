package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Backend   BackendConfig   `json:"backend"`
	Gateway   GatewayConfig   `json:"gateway"`
	Assistant AssistantConfig `json:"assistant"`
	Ingestion IngestionConfig `json:"ingestion"`
	Auth      AuthConfig      `json:"auth"`
	Logging   LoggingConfig   `json:"logging"`
	mu        sync.RWMutex
}

// BackendConfig points at the remote reasoning backend. The daemon only
// speaks its documented protocol: the /query event stream and the REST
// endpoints under /finance and /health.
type BackendConfig struct {
	BaseURL        string `json:"base_url" env:"PMOSD_BACKEND_BASE_URL"`
	QueryPath      string `json:"query_path" env:"PMOSD_BACKEND_QUERY_PATH"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"PMOSD_BACKEND_TIMEOUT_SECONDS"`
}

type GatewayConfig struct {
	Enabled bool   `json:"enabled" env:"PMOSD_GATEWAY_ENABLED"`
	Host    string `json:"host" env:"PMOSD_GATEWAY_HOST"`
	Port    int    `json:"port" env:"PMOSD_GATEWAY_PORT"`
}

type AssistantConfig struct {
	Workspace         string `json:"workspace" env:"PMOSD_ASSISTANT_WORKSPACE"`
	PreloadResolvers  bool   `json:"preload_resolvers" env:"PMOSD_ASSISTANT_PRELOAD_RESOLVERS"`
	AlarmLabel        string `json:"alarm_label" env:"PMOSD_ASSISTANT_ALARM_LABEL"`
	DismissOnDispatch bool   `json:"dismiss_on_dispatch" env:"PMOSD_ASSISTANT_DISMISS_ON_DISPATCH"`
}

type IngestionConfig struct {
	Enabled             bool   `json:"enabled" env:"PMOSD_INGESTION_ENABLED"`
	PollIntervalSeconds int    `json:"poll_interval_seconds" env:"PMOSD_INGESTION_POLL_INTERVAL_SECONDS"`
	StepsCron           string `json:"steps_cron" env:"PMOSD_INGESTION_STEPS_CRON"`
}

type AuthConfig struct {
	TokenPath string `json:"token_path" env:"PMOSD_AUTH_TOKEN_PATH"`
}

type LoggingConfig struct {
	FileEnabled     bool   `json:"file_enabled" env:"PMOSD_LOGGING_FILE_ENABLED"`
	FilePath        string `json:"file_path" env:"PMOSD_LOGGING_FILE_PATH"`
	RotationEnabled bool   `json:"rotation_enabled" env:"PMOSD_LOGGING_ROTATION_ENABLED"`
	MaxAgeDays      int    `json:"max_age_days" env:"PMOSD_LOGGING_MAX_AGE_DAYS"`
	MaxSizeMB       int    `json:"max_size_mb" env:"PMOSD_LOGGING_MAX_SIZE_MB"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			QueryPath:      "/query/stream",
			TimeoutSeconds: 60,
		},
		Gateway: GatewayConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    18890,
		},
		Assistant: AssistantConfig{
			Workspace:         "~/.pmosd",
			PreloadResolvers:  true,
			AlarmLabel:        "Set by PMOS",
			DismissOnDispatch: true,
		},
		Ingestion: IngestionConfig{
			Enabled:             true,
			PollIntervalSeconds: 5,
			StepsCron:           "*/15 * * * *",
		},
		Auth: AuthConfig{
			TokenPath: "~/.pmosd/session.json",
		},
		Logging: LoggingConfig{
			FileEnabled:     true,
			FilePath:        "~/.pmosd/pmosd.log",
			RotationEnabled: true,
			MaxAgeDays:      7,
			MaxSizeMB:       50,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if envErr := env.Parse(cfg); envErr != nil {
				return nil, envErr
			}
			resolveEnvRefs(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	resolveEnvRefs(cfg)

	return cfg, nil
}

func resolveEnvRefs(cfg *Config) {
	cfg.Backend.BaseURL = resolveEnvRef(cfg.Backend.BaseURL)
	cfg.Auth.TokenPath = resolveEnvRef(cfg.Auth.TokenPath)
}

// resolveEnvRef expands "$NAME" and "${NAME}" values so config files can
// reference environment variables without embedding secrets.
func resolveEnvRef(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return v
	}
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		key := strings.TrimSpace(s[2 : len(s)-1])
		if key == "" {
			return v
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return v
	}
	if strings.HasPrefix(s, "$") && len(s) > 1 {
		key := strings.TrimSpace(s[1:])
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
	}
	return v
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Assistant.Workspace)
}

func (c *Config) TokenPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Auth.TokenPath)
}

func (c *Config) LogFilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Logging.FilePath)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
