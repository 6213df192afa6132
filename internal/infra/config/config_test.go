package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Router.FallbackAgent != "admission" {
		t.Errorf("fallback agent: got %q, want %q", cfg.Router.FallbackAgent, "admission")
	}
	if cfg.Router.Temperature >= cfg.Executor.Temperature {
		t.Errorf("router temperature %v should be below executor temperature %v",
			cfg.Router.Temperature, cfg.Executor.Temperature)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Name != "gemini" {
		t.Errorf("got provider %q, want gemini", cfg.Provider.Name)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
provider:
  name: gemini
  model: gemini-2.5-pro
router:
  temperature: 0.2
  fallback_agent: billing
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEDIOPS_MODEL", "gemini-2.5-flash")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Model != "gemini-2.5-flash" {
		t.Errorf("env override lost: got %q", cfg.Provider.Model)
	}
	if cfg.Router.FallbackAgent != "billing" {
		t.Errorf("got fallback %q, want billing", cfg.Router.FallbackAgent)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"router fallback", func(c *Config) { c.Router.FallbackAgent = "router" }},
		{"unknown fallback", func(c *Config) { c.Router.FallbackAgent = "cardiology" }},
		{"temperature range", func(c *Config) { c.Executor.Temperature = 3 }},
		{"audit sink", func(c *Config) { c.Audit.Sink = "kafka" }},
		{"audit path", func(c *Config) { c.Audit.Sink = "file" }},
		{"negative budget", func(c *Config) { c.History.MaxTokens = -1 }},
		{"rate burst", func(c *Config) { c.Resilience.RateLimitRPS = 1; c.Resilience.RateLimitBurst = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSecretRoundTrip(t *testing.T) {
	enc, err := EncryptValue("super-secret-key", "passphrase")
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	plain, err := DecryptValue(enc, "passphrase")
	if err != nil {
		t.Fatalf("DecryptValue: %v", err)
	}
	if plain != "super-secret-key" {
		t.Errorf("got %q", plain)
	}

	if _, err := DecryptValue(enc, "wrong"); err == nil {
		t.Error("wrong passphrase should fail")
	}
}

func TestLoadDecryptsAPIKey(t *testing.T) {
	enc, err := EncryptValue("k-123", "pw")
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "provider:\n  name: gemini\n  model: m\n  api_key: enc:" + enc + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEDIOPS_CONFIG_KEY", "pw")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.APIKey != "k-123" {
		t.Errorf("got %q, want decrypted key", cfg.Provider.APIKey)
	}
}
