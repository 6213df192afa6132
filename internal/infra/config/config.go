package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"mediops/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Router     RouterConfig     `yaml:"router"`
	Executor   ExecutorConfig   `yaml:"executor"`
	History    HistoryConfig    `yaml:"history"`
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Audit      AuditConfig      `yaml:"audit"`
	Resilience ResilienceConfig `yaml:"resilience"`
}

// ProviderConfig holds generation-backend settings.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`

	// Zero timeouts mean the client waits indefinitely; set these to put a
	// deadline around each backend call.
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
}

// RouterConfig holds classification-phase settings.
type RouterConfig struct {
	Temperature   float64 `yaml:"temperature"`
	FallbackAgent string  `yaml:"fallback_agent"`
}

// ExecutorConfig holds execution-phase settings.
type ExecutorConfig struct {
	Temperature float64 `yaml:"temperature"`
}

// HistoryConfig controls transcript rendering.
type HistoryConfig struct {
	MaxTokens int    `yaml:"max_tokens"` // 0 = unlimited
	Encoding  string `yaml:"encoding"`   // tiktoken encoding name
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// AuditConfig selects the persistent audit sink.
type AuditConfig struct {
	Sink string `yaml:"sink"` // "none", "file", "sqlite"
	Path string `yaml:"path"`
}

// ResilienceConfig holds provider-wrapper settings.
type ResilienceConfig struct {
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures"`
	BreakerTimeout     time.Duration `yaml:"breaker_timeout"`
	RateLimitRPS       float64       `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
}

// Defaults returns a Config populated with sensible defaults.
func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:  "gemini",
			Model: "gemini-2.5-flash",
		},
		Router: RouterConfig{
			Temperature:   0.1,
			FallbackAgent: string(domain.AgentAdmission),
		},
		Executor: ExecutorConfig{
			Temperature: 0.6,
		},
		History: HistoryConfig{
			Encoding: "cl100k_base",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter: "noop",
		},
		Audit: AuditConfig{
			Sink: "none",
		},
		Resilience: ResilienceConfig{
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			RateLimitBurst:     1,
		},
	}
}

// Load reads a YAML config file, applies environment overrides, decrypts
// any encrypted secrets, and validates the result. A missing file is not an
// error: defaults plus env overrides are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, fmt.Sprintf("parse config: %v", err))
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("MEDIOPS_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, fmt.Sprintf("decrypt secrets: %v", err))
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies MEDIOPS_* environment variables on top of cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEDIOPS_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("MEDIOPS_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("MEDIOPS_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("MEDIOPS_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("MEDIOPS_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("MEDIOPS_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("MEDIOPS_AUDIT_SINK"); v != "" {
		cfg.Audit.Sink = v
	}
	if v := os.Getenv("MEDIOPS_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
	if v := os.Getenv("MEDIOPS_HISTORY_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.History.MaxTokens = n
		}
	}
}
