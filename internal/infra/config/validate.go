package config

import (
	"fmt"

	"mediops/internal/domain"
)

// Validate checks the configuration for inconsistent or out-of-range values.
func Validate(cfg *Config) error {
	if cfg.Provider.Name == "" {
		return validationError("provider.name must be set")
	}
	if cfg.Provider.Model == "" {
		return validationError("provider.model must be set")
	}

	if cfg.Router.Temperature < 0 || cfg.Router.Temperature > 2 {
		return validationError(fmt.Sprintf("router.temperature %v out of range [0,2]", cfg.Router.Temperature))
	}
	if cfg.Executor.Temperature < 0 || cfg.Executor.Temperature > 2 {
		return validationError(fmt.Sprintf("executor.temperature %v out of range [0,2]", cfg.Executor.Temperature))
	}

	fallback, err := domain.ParseAgentID(cfg.Router.FallbackAgent)
	if err != nil || !fallback.Specialist() {
		return validationError(fmt.Sprintf("router.fallback_agent %q is not a specialist", cfg.Router.FallbackAgent))
	}

	if cfg.History.MaxTokens < 0 {
		return validationError("history.max_tokens must be >= 0")
	}

	switch cfg.Audit.Sink {
	case "", "none":
	case "file", "sqlite":
		if cfg.Audit.Path == "" {
			return validationError(fmt.Sprintf("audit.path must be set for sink %q", cfg.Audit.Sink))
		}
	default:
		return validationError(fmt.Sprintf("audit.sink %q is not one of none, file, sqlite", cfg.Audit.Sink))
	}

	if cfg.Resilience.RateLimitRPS < 0 {
		return validationError("resilience.rate_limit_rps must be >= 0")
	}
	if cfg.Resilience.RateLimitRPS > 0 && cfg.Resilience.RateLimitBurst < 1 {
		return validationError("resilience.rate_limit_burst must be >= 1 when rate limiting is on")
	}

	return nil
}

func validationError(detail string) error {
	return domain.NewDomainError("config.Validate", domain.ErrConfigLoad, detail)
}
