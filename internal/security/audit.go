package security

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mediops/internal/domain"
	"mediops/internal/infra/tracer"
)

// FileAuditSink implements domain.AuditSink by appending JSONL to a file.
// Entries carry agent IDs and action descriptions only, never request text.
type FileAuditSink struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewFileAuditSink creates a sink that appends to the given path.
// The file is created with 0600 permissions if it does not exist.
func NewFileAuditSink(path string) (*FileAuditSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &FileAuditSink{file: f, path: path}, nil
}

// Record writes an audit entry as a single JSON line.
func (s *FileAuditSink) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return domain.NewDomainError("FileAuditSink.Record", domain.ErrAuditWrite, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return domain.NewDomainError("FileAuditSink.Record", domain.ErrAuditWrite, err.Error())
	}

	// Also emit as OTel span event if a span is active.
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		attrs := []trace.EventOption{trace.WithAttributes(
			tracer.StringAttr("audit.agent", string(entry.Agent)),
			tracer.StringAttr("audit.status", string(entry.Status)),
		)}
		if sid := domain.SessionIDFromContext(ctx); sid != "" {
			attrs = append(attrs, trace.WithAttributes(tracer.StringAttr("session.id", sid)))
		}
		span.AddEvent("audit."+entry.Action, attrs...)
	}

	return nil
}

// Close closes the underlying file.
func (s *FileAuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
