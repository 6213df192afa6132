package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// SkipIfShort skips integration tests in short mode.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestContext creates a context with timeout for integration tests.
func NewTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// backendRequest is the subset of the backend wire format the stub needs
// to tell a routing call from an execution call.
type backendRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

// stubBackend plays the model: routing calls (constrained to JSON output)
// get scripted delegation decisions, execution calls get scripted replies.
type stubBackend struct {
	t          *testing.T
	mu         sync.Mutex
	routing    []string // JSON decision bodies, consumed in order
	executions []string // raw candidate JSON bodies, consumed in order
	prompts    []string // execution prompts, recorded in order
}

// Serve starts an httptest server for the stub and tears it down with the
// test.
func (s *stubBackend) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	s.t = t
	server := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(server.Close)
	return server
}

func (s *stubBackend) handle(w http.ResponseWriter, r *http.Request) {
	var req backendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.t.Errorf("backend request not decodable: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.GenerationConfig.ResponseMimeType == "application/json" {
		s.writeText(w, next(&s.routing, `{"agent":"admission","reason":"default"}`))
		return
	}

	if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
		s.prompts = append(s.prompts, req.Contents[0].Parts[0].Text)
	}
	w.Write([]byte(next(&s.executions,
		`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)))
}

func (s *stubBackend) executionPrompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func next(queue *[]string, fallback string) string {
	if len(*queue) == 0 {
		return fallback
	}
	head := (*queue)[0]
	*queue = (*queue)[1:]
	return head
}

func (s *stubBackend) writeText(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.t.Errorf("encode stub response: %v", err)
	}
}
