package llm

import (
	"context"

	"golang.org/x/time/rate"

	"mediops/internal/domain"
	"mediops/internal/infra/config"
)

// RateLimitedProvider wraps an LLMProvider with a token-bucket rate limiter,
// smoothing bursts of turns against provider quotas. Waiting respects the
// call's context deadline.
type RateLimitedProvider struct {
	inner   domain.LLMProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps inner with the configured request rate.
// When cfg.RateLimitRPS is 0 the inner provider is returned unwrapped.
func NewRateLimitedProvider(inner domain.LLMProvider, cfg config.ResilienceConfig) domain.LLMProvider {
	if cfg.RateLimitRPS <= 0 {
		return inner
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst),
	}
}

// Generate implements domain.LLMProvider.
func (p *RateLimitedProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, domain.NewDomainError("RateLimitedProvider.Generate", domain.ErrRateLimit, err.Error())
	}
	return p.inner.Generate(ctx, req)
}

// Name implements domain.LLMProvider.
func (p *RateLimitedProvider) Name() string { return p.inner.Name() }
