package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"mediops/internal/adapter/tool"
	"mediops/internal/domain"
	"mediops/internal/infra/config"
	"mediops/internal/infra/tracer"
)

// Fixed reply lines. These are contract, not copy: tests and the audit
// trail depend on them.
const (
	apologyReply  = "I'm sorry, something went wrong while handling your request. Please try again in a moment."
	emptyReply    = "I wasn't able to produce a response for that request. Could you rephrase it?"
	confirmFormat = "I've prepared the %s document. Please review it below before filing."
)

// ExecutionResult is the executor's interpreted output for one turn.
type ExecutionResult struct {
	Reply     string
	Document  *domain.Document
	Citations []domain.Citation
}

// Executor is the execution phase of a turn: it runs the chosen specialist
// with its persona and tool set, then interprets the backend's response.
// Like the classifier, it never fails hard.
type Executor struct {
	provider    domain.LLMProvider
	tools       *tool.Registry
	personas    map[domain.AgentID]personaSpec
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewExecutor creates an executor with the default persona table.
func NewExecutor(provider domain.LLMProvider, tools *tool.Registry, cfg config.ExecutorConfig, model string, logger *slog.Logger) *Executor {
	return &Executor{
		provider:    provider,
		tools:       tools,
		personas:    defaultPersonas(),
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Run executes one turn for the chosen specialist. The history string is
// the rendered transcript of messages preceding this turn; it may be empty.
func (e *Executor) Run(ctx context.Context, agent domain.AgentID, text, history string) ExecutionResult {
	ctx, span := tracer.StartSpan(ctx, "executor.run",
		trace.WithAttributes(tracer.StringAttr("executor.agent", string(agent))),
	)
	defer span.End()

	persona := personaFor(e.personas, agent)

	var prompt strings.Builder
	if history != "" {
		prompt.WriteString(history)
		prompt.WriteString("\n")
	}
	prompt.WriteString("user: ")
	prompt.WriteString(text)

	result, err := e.provider.Generate(ctx, domain.GenerateRequest{
		Model:        e.model,
		System:       persona.Instruction,
		Prompt:       prompt.String(),
		Temperature:  e.temperature,
		Tools:        persona.Tools,
		EnableSearch: persona.Search,
	})
	if err != nil {
		tracer.RecordError(span, err)
		e.logger.Warn("execution call failed", "agent", agent, "error", err)
		return ExecutionResult{Reply: apologyReply}
	}

	out := e.interpret(agent, result)
	span.SetAttributes(tracer.IntAttr("executor.citations", len(out.Citations)))
	tracer.SetOK(span)
	return out
}

// interpret applies the response rules in priority order: document tool
// call, plain text, canned line. Citations are extracted independently.
func (e *Executor) interpret(agent domain.AgentID, result *domain.GenerateResult) ExecutionResult {
	out := ExecutionResult{Citations: result.Citations}

	// Only the first tool call is honored; simultaneous extras are ignored.
	if len(result.ToolCalls) > 0 && result.ToolCalls[0].Name == tool.DocumentToolName {
		call := result.ToolCalls[0]
		if doc := e.acceptDocument(agent, call); doc != nil {
			out.Document = doc
			out.Reply = fmt.Sprintf(confirmFormat, doc.Type)
			return out
		}
	}

	if result.Text != "" {
		out.Reply = result.Text
		return out
	}

	out.Reply = emptyReply
	return out
}

// acceptDocument validates and decodes a create_document call. Invalid
// arguments are logged and dropped so interpretation can fall through.
func (e *Executor) acceptDocument(agent domain.AgentID, call domain.ToolCall) *domain.Document {
	if e.tools != nil {
		if err := e.tools.ValidateArgs(call.Name, call.Arguments); err != nil {
			e.logger.Warn("document arguments rejected", "agent", agent, "error", err)
			return nil
		}
	}
	doc, err := tool.ParseDocumentArgs(call.Arguments)
	if err != nil {
		e.logger.Warn("document arguments not decodable", "agent", agent, "error", err)
		return nil
	}
	return doc
}
