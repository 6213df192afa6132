package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mediops/internal/domain"
	"mediops/internal/infra/tracer"
)

// UserSender is the sender label on user messages.
const UserSender = "user"

// turnErrorReply is appended, attributed to the router, when a turn fails
// in a way neither phase absorbed.
const turnErrorReply = "Something went wrong while processing that request. Please try again."

// ControllerDeps holds injected dependencies for the turn controller.
type ControllerDeps struct {
	Classifier       *Classifier
	Executor         *Executor
	Counter          TokenCounter     // optional, nil = heuristic counting
	Sink             domain.AuditSink // optional, nil = session-only audit
	Logger           *slog.Logger
	MaxHistoryTokens int // 0 = unlimited transcript
}

// Controller orchestrates one user turn: classify, execute, append, audit.
// It owns the session-scoped state (transcript, audit trail, active agent)
// and admits at most one turn at a time; concurrent turns are rejected,
// not queued.
type Controller struct {
	deps    ControllerDeps
	session *Session
	audit   *AuditTrail

	mu       sync.Mutex
	inFlight bool
	active   domain.AgentID
}

// NewController creates a controller with a fresh session and audit trail.
func NewController(deps ControllerDeps) *Controller {
	return &Controller{
		deps:    deps,
		session: NewSession(),
		audit:   NewAuditTrail(),
		active:  domain.AgentRouter,
	}
}

// Handle processes a single user turn. It returns the agent's reply message,
// or an error only for boundary rejections (empty input, turn in flight).
func (c *Controller) Handle(ctx context.Context, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewDomainError("Controller.Handle", domain.ErrInvalidInput, "empty request")
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	ctx = domain.ContextWithSessionID(ctx, c.session.ID)
	ctx, span := tracer.StartSpan(ctx, "turn.handle")
	defer span.End()

	msg := c.runTurn(ctx, text)
	tracer.SetOK(span)
	return msg, nil
}

// runTurn executes the turn pipeline. A panic from either phase degrades to
// a generic error message attributed to the router.
func (c *Controller) runTurn(ctx context.Context, text string) (msg *domain.ChatMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.deps.Logger.Error("turn failed", "panic", r)
			c.setActive(domain.AgentRouter)
			errMsg := c.session.AppendAgent(domain.AgentRouter, turnErrorReply, nil, nil)
			msg = &errMsg
		}
	}()

	// The executor sees only messages that preceded this turn.
	history := RenderTranscript(c.session.Messages(), c.deps.MaxHistoryTokens, c.deps.Counter)
	c.session.AppendUser(UserSender, text)

	decision := c.deps.Classifier.Classify(ctx, text)
	c.record(ctx, domain.AgentRouter,
		fmt.Sprintf("delegated to %s: %s", decision.Agent, decision.Rationale),
		domain.AuditSuccess)
	c.setActive(decision.Agent)

	result := c.deps.Executor.Run(ctx, decision.Agent, text, history)

	reply := c.session.AppendAgent(decision.Agent, result.Reply, result.Document, result.Citations)

	action := "returned plain response"
	if result.Document != nil {
		action = fmt.Sprintf("generated %s document", result.Document.Type)
	}
	c.record(ctx, decision.Agent, action, domain.AuditSuccess)

	return &reply
}

// record appends an audit entry and mirrors it to the sink, if configured.
// Sink failures are logged, never surfaced.
func (c *Controller) record(ctx context.Context, agent domain.AgentID, action string, status domain.AuditStatus) {
	entry := c.audit.Append(agent, action, status)
	if c.deps.Sink == nil {
		return
	}
	if err := c.deps.Sink.Record(ctx, entry); err != nil {
		c.deps.Logger.Warn("audit sink write failed", "error", err)
	}
}

// begin admits the turn, rejecting it if another is in flight.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return domain.NewDomainError("Controller.Handle", domain.ErrBusy, "")
	}
	c.inFlight = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) setActive(agent domain.AgentID) {
	c.mu.Lock()
	c.active = agent
	c.mu.Unlock()
}

// ActiveAgent returns the agent indicator for presentation collaborators.
func (c *Controller) ActiveAgent() domain.AgentID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Messages exposes the session transcript.
func (c *Controller) Messages() []domain.ChatMessage { return c.session.Messages() }

// AuditEntries exposes the session audit trail.
func (c *Controller) AuditEntries() []domain.AuditEntry { return c.audit.Entries() }

// SessionID returns the session's ULID.
func (c *Controller) SessionID() string { return c.session.ID }
