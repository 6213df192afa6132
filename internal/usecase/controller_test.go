package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediops/internal/domain"
)

func delegation(agent domain.AgentID, reason string) mockResponse {
	return textResponse(`{"agent":"` + string(agent) + `","reason":"` + reason + `"}`)
}

func TestHandleRejectsEmptyInput(t *testing.T) {
	c := newTestController(&mockProvider{})
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := c.Handle(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Handle(%q) err = %v, want ErrInvalidInput", input, err)
		}
	}
	if c.session.Len() != 0 {
		t.Error("rejected input must not reach the transcript")
	}
}

func TestHandleTurnPipeline(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{
		delegation(domain.AgentBilling, "invoice question"),
		textResponse("The invoice totals $120."),
	}}
	c := newTestController(p)

	msg, err := c.Handle(context.Background(), "what does my invoice say?")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if msg.Text != "The invoice totals $120." {
		t.Errorf("reply = %q", msg.Text)
	}
	if msg.Sender != string(domain.AgentBilling) {
		t.Errorf("sender = %q, want the specialist", msg.Sender)
	}
	if c.ActiveAgent() != domain.AgentBilling {
		t.Errorf("active agent = %q", c.ActiveAgent())
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("transcript holds %d messages", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Sender != UserSender {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAgent {
		t.Errorf("second message = %+v", msgs[1])
	}
}

func TestHandleTwoAuditEntriesPerTurn(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{
		delegation(domain.AgentPharmacy, "drug interaction"),
		textResponse("No interaction on record."),
		delegation(domain.AgentScheduling, "appointment"),
		textResponse("Tuesday at nine works."),
	}}
	c := newTestController(p)

	for _, input := range []string{"does X interact with Y?", "book a follow-up"} {
		if _, err := c.Handle(context.Background(), input); err != nil {
			t.Fatalf("Handle(%q): %v", input, err)
		}
	}

	entries := c.AuditEntries()
	if len(entries) != 4 {
		t.Fatalf("audit trail holds %d entries, want 4", len(entries))
	}
	wantAgents := []domain.AgentID{
		domain.AgentRouter, domain.AgentPharmacy,
		domain.AgentRouter, domain.AgentScheduling,
	}
	for i, entry := range entries {
		if entry.Agent != wantAgents[i] {
			t.Errorf("entry %d agent = %q, want %q", i, entry.Agent, wantAgents[i])
		}
		if entry.Status != domain.AuditSuccess {
			t.Errorf("entry %d status = %q", i, entry.Status)
		}
		if entry.ID == "" || entry.Timestamp.IsZero() {
			t.Errorf("entry %d missing identity: %+v", i, entry)
		}
	}
}

func TestHandleMirrorsAuditToSink(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{
		delegation(domain.AgentAdmission, "bed request"),
		textResponse("Ward B2 is open."),
	}}
	sink := &memorySink{}
	c := NewController(ControllerDeps{
		Classifier: newTestClassifier(p),
		Executor:   newTestExecutor(p),
		Sink:       sink,
		Logger:     testLogger(),
	})

	if _, err := c.Handle(context.Background(), "any beds?"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sink.entries) != 2 {
		t.Fatalf("sink holds %d entries, want 2", len(sink.entries))
	}
	if sink.entries[0].Agent != domain.AgentRouter || sink.entries[1].Agent != domain.AgentAdmission {
		t.Errorf("sink entries = %+v", sink.entries)
	}
}

func TestHandleRejectsConcurrentTurn(t *testing.T) {
	p := &mockProvider{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := newTestController(p)

	done := make(chan error, 1)
	go func() {
		_, err := c.Handle(context.Background(), "first")
		done <- err
	}()

	select {
	case <-p.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first turn never reached the provider")
	}

	if _, err := c.Handle(context.Background(), "second"); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("concurrent Handle err = %v, want ErrBusy", err)
	}

	close(p.block)
	if err := <-done; err != nil {
		t.Fatalf("first turn: %v", err)
	}

	// The slot frees up once the first turn completes.
	if _, err := c.Handle(context.Background(), "third"); err != nil {
		t.Fatalf("follow-up Handle: %v", err)
	}
}

func TestHandlePanicDegradesToRouterError(t *testing.T) {
	p := &mockProvider{panicMsg: "backend exploded"}
	c := newTestController(p)

	msg, err := c.Handle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if msg.Text != turnErrorReply {
		t.Errorf("reply = %q", msg.Text)
	}
	if msg.Sender != string(domain.AgentRouter) {
		t.Errorf("sender = %q, want router", msg.Sender)
	}
	if c.ActiveAgent() != domain.AgentRouter {
		t.Errorf("active agent = %q, want router reset", c.ActiveAgent())
	}

	// A later well-formed turn still works.
	p.panicMsg = ""
	p.responses = []mockResponse{
		delegation(domain.AgentAdmission, "bed request"),
		textResponse("recovered"),
	}
	if _, err := c.Handle(context.Background(), "try again"); err != nil {
		t.Fatalf("recovery Handle: %v", err)
	}
}

func TestHandleHistoryExcludesCurrentTurn(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{
		delegation(domain.AgentAdmission, "beds"),
		textResponse("two free"),
		delegation(domain.AgentAdmission, "beds"),
		textResponse("still two"),
	}}
	c := newTestController(p)

	if _, err := c.Handle(context.Background(), "beds today?"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := c.Handle(context.Background(), "and tomorrow?"); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	reqs := p.recorded()
	if len(reqs) != 4 {
		t.Fatalf("recorded %d requests", len(reqs))
	}

	// First turn's executor call has no history prefix.
	if reqs[1].Prompt != "user: beds today?" {
		t.Errorf("first executor prompt = %q", reqs[1].Prompt)
	}
	// Second turn sees the first turn's exchange, not its own user message
	// twice.
	want := "user: beds today?\nadmission: two free\nuser: and tomorrow?"
	if reqs[3].Prompt != want {
		t.Errorf("second executor prompt = %q, want %q", reqs[3].Prompt, want)
	}
}

// memorySink captures audit entries in order.
type memorySink struct {
	entries []domain.AuditEntry
}

func (s *memorySink) Record(_ context.Context, entry domain.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) Close() error { return nil }
