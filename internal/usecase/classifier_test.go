package usecase

import (
	"context"
	"strings"
	"testing"

	"mediops/internal/domain"
)

func TestClassifyPicksSpecialist(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{
		textResponse(`{"agent":"pharmacy","reason":"medication stock question"}`),
	}}

	decision := newTestClassifier(p).Classify(context.Background(), "do we have amoxicillin in stock?")
	if decision.Agent != domain.AgentPharmacy {
		t.Errorf("agent = %q, want pharmacy", decision.Agent)
	}
	if decision.Rationale != "medication stock question" {
		t.Errorf("rationale = %q", decision.Rationale)
	}

	reqs := p.recorded()
	if len(reqs) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(reqs))
	}
	if len(reqs[0].ResponseSchema) == 0 {
		t.Error("classification must constrain output with a response schema")
	}
	if len(reqs[0].Tools) != 0 || reqs[0].EnableSearch {
		t.Error("router must not see tools")
	}
	for _, id := range domain.Specialists() {
		if !strings.Contains(reqs[0].System, string(id)) {
			t.Errorf("instruction does not enumerate %s", id)
		}
	}
}

func TestClassifyMalformedResponseFallsBack(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{textResponse("not json at all")}}

	decision := newTestClassifier(p).Classify(context.Background(), "hello")
	if decision.Agent != domain.AgentAdmission {
		t.Errorf("agent = %q, want admission fallback", decision.Agent)
	}
	if !strings.HasPrefix(decision.Rationale, "fallback:") {
		t.Errorf("rationale %q does not mark the fallback", decision.Rationale)
	}
}

func TestClassifyUnknownAgentFallsBack(t *testing.T) {
	cases := []string{
		`{"agent":"cardiology","reason":"r"}`,
		`{"agent":"router","reason":"r"}`, // the router may never pick itself
		`{"agent":"","reason":"r"}`,
	}
	for _, body := range cases {
		p := &mockProvider{responses: []mockResponse{textResponse(body)}}
		decision := newTestClassifier(p).Classify(context.Background(), "hello")
		if decision.Agent != domain.AgentAdmission {
			t.Errorf("body %s: agent = %q, want admission fallback", body, decision.Agent)
		}
	}
}

func TestClassifyProviderErrorFallsBack(t *testing.T) {
	p := &mockProvider{responses: []mockResponse{errResponse(domain.ErrProviderError)}}

	decision := newTestClassifier(p).Classify(context.Background(), "hello")
	if decision.Agent != domain.AgentAdmission {
		t.Errorf("agent = %q, want admission fallback", decision.Agent)
	}
	if !strings.HasPrefix(decision.Rationale, "fallback:") {
		t.Errorf("rationale %q does not mark the fallback", decision.Rationale)
	}
}

func TestClassifyAlwaysReturnsSpecialist(t *testing.T) {
	bodies := []string{
		`{"agent":"admission","reason":"r"}`,
		`{"agent":"scheduling","reason":"r"}`,
		`{"agent":"billing","reason":"r"}`,
		`{"agent":"bogus","reason":"r"}`,
		`{}`,
		``,
	}
	for _, body := range bodies {
		p := &mockProvider{responses: []mockResponse{textResponse(body)}}
		decision := newTestClassifier(p).Classify(context.Background(), "request")
		if !decision.Agent.Specialist() {
			t.Errorf("body %q: returned non-specialist %q", body, decision.Agent)
		}
	}
}
