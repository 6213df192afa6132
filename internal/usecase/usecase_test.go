package usecase

import (
	"context"
	"log/slog"
	"sync"

	"mediops/internal/adapter/tool"
	"mediops/internal/domain"
	"mediops/internal/infra/config"
)

// mockResponse scripts one Generate outcome.
type mockResponse struct {
	result *domain.GenerateResult
	err    error
}

// mockProvider replays scripted responses and records every request.
// When block is set, Generate signals entered and waits on block before
// returning.
type mockProvider struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []domain.GenerateRequest
	block     chan struct{}
	entered   chan struct{}
	panicMsg  string
}

func (m *mockProvider) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.block != nil {
		<-m.block
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		return &domain.GenerateResult{Text: "ok"}, nil
	}
	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return next.result, next.err
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) recorded() []domain.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GenerateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func textResponse(text string) mockResponse {
	return mockResponse{result: &domain.GenerateResult{Text: text}}
}

func errResponse(err error) mockResponse {
	return mockResponse{err: err}
}

func testLogger() *slog.Logger { return slog.Default() }

func newTestClassifier(p domain.LLMProvider) *Classifier {
	return NewClassifier(p, config.RouterConfig{
		Temperature:   0.1,
		FallbackAgent: string(domain.AgentAdmission),
	}, "test-model", testLogger())
}

func newTestExecutor(p domain.LLMProvider) *Executor {
	registry := tool.NewRegistry()
	if err := registry.Register(tool.DocumentTool()); err != nil {
		panic(err)
	}
	return NewExecutor(p, registry, config.ExecutorConfig{Temperature: 0.6}, "test-model", testLogger())
}

func newTestController(p domain.LLMProvider) *Controller {
	return NewController(ControllerDeps{
		Classifier: newTestClassifier(p),
		Executor:   newTestExecutor(p),
		Logger:     testLogger(),
	})
}
