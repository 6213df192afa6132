package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"mediops/internal/domain"
	"mediops/internal/infra/config"
	"mediops/internal/infra/tracer"
)

// Classifier is the routing phase of a turn: it maps a request to exactly
// one specialist. It never fails hard; any backend or decode problem yields
// the configured fallback specialist.
type Classifier struct {
	provider    domain.LLMProvider
	model       string
	temperature float64
	fallback    domain.AgentID
	logger      *slog.Logger
}

// NewClassifier creates a classifier. An invalid fallback agent in cfg is
// replaced with the admission specialist.
func NewClassifier(provider domain.LLMProvider, cfg config.RouterConfig, model string, logger *slog.Logger) *Classifier {
	fallback, err := domain.ParseAgentID(cfg.FallbackAgent)
	if err != nil || !fallback.Specialist() {
		fallback = domain.AgentAdmission
	}
	return &Classifier{
		provider:    provider,
		model:       model,
		temperature: cfg.Temperature,
		fallback:    fallback,
		logger:      logger,
	}
}

// decisionWire is the structured response the backend is constrained to.
type decisionWire struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

// decisionSchema constrains the backend's output to the specialist enum.
func decisionSchema() json.RawMessage {
	ids := domain.Specialists()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent":  map[string]any{"type": "string", "enum": names},
			"reason": map[string]any{"type": "string"},
		},
		"required": []string{"agent", "reason"},
	}
	raw, _ := json.Marshal(schema)
	return raw
}

// classifyInstruction enumerates the specialists and their domains.
func classifyInstruction() string {
	var sb strings.Builder
	sb.WriteString("You are the triage router of a hospital operations assistant. ")
	sb.WriteString("Read the request and delegate it to exactly one specialist agent:\n")
	for _, id := range domain.Specialists() {
		sb.WriteString("- ")
		sb.WriteString(string(id))
		sb.WriteString(": ")
		sb.WriteString(agentDescriptions[id])
		sb.WriteString("\n")
	}
	sb.WriteString("Respond with JSON naming the chosen agent and a one-sentence reason. ")
	sb.WriteString("Do not answer the request yourself.")
	return sb.String()
}

// Classify maps the request text to a DelegationDecision. The returned
// agent is always a valid specialist.
func (c *Classifier) Classify(ctx context.Context, text string) domain.DelegationDecision {
	ctx, span := tracer.StartSpan(ctx, "router.classify")
	defer span.End()

	result, err := c.provider.Generate(ctx, domain.GenerateRequest{
		Model:          c.model,
		System:         classifyInstruction(),
		Prompt:         text,
		Temperature:    c.temperature,
		ResponseSchema: decisionSchema(),
	})
	if err != nil {
		tracer.RecordError(span, err)
		c.logger.Warn("classification call failed, using fallback",
			"fallback", c.fallback, "error", err)
		return c.fallbackDecision("classification unavailable")
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(result.Text), &wire); err != nil {
		tracer.RecordError(span, err)
		c.logger.Warn("classification response not decodable, using fallback",
			"fallback", c.fallback, "response", result.Text)
		return c.fallbackDecision("classification response unreadable")
	}

	agent, err := domain.ParseAgentID(wire.Agent)
	if err != nil || !agent.Specialist() {
		tracer.RecordError(span, domain.ErrUnknownAgent)
		c.logger.Warn("classification named unknown agent, using fallback",
			"agent", wire.Agent, "fallback", c.fallback)
		return c.fallbackDecision("classification named an unknown agent")
	}

	span.SetAttributes(tracer.StringAttr("router.agent", string(agent)))
	tracer.SetOK(span)
	c.logger.Debug("request delegated", "agent", agent, "reason", wire.Reason)

	return domain.DelegationDecision{Agent: agent, Rationale: wire.Reason}
}

func (c *Classifier) fallbackDecision(reason string) domain.DelegationDecision {
	return domain.DelegationDecision{
		Agent:     c.fallback,
		Rationale: "fallback: " + reason,
	}
}
