package domain

import (
	"context"
	"encoding/json"
	"time"
)

// LLMProvider is the interface for the text-generation backend.
type LLMProvider interface {
	// Generate issues a single generation call and returns the complete result.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// Name returns the provider's identifier (e.g. "gemini").
	Name() string
}

// GenerateRequest is a single call to the generation backend. Exactly one of
// the optional constraint surfaces is used per phase: the router sets
// ResponseSchema for structured output; the executor binds Tools and/or
// EnableSearch.
type GenerateRequest struct {
	Model          string          `json:"model"`
	System         string          `json:"system,omitempty"`
	Prompt         string          `json:"prompt"`
	Temperature    float64         `json:"temperature"`
	ResponseSchema json.RawMessage `json:"response_schema,omitempty"` // forces JSON output when set
	Tools          []ToolSchema    `json:"tools,omitempty"`
	EnableSearch   bool            `json:"enable_search,omitempty"`
}

// GenerateResult is the interpreted backend response.
type GenerateResult struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Citations []Citation `json:"citations,omitempty"` // from grounding metadata, order preserved
	Usage     Usage      `json:"usage"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
