package domain

import (
	"context"
	"time"
)

// AuditStatus is the outcome recorded on an audit entry.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditPending AuditStatus = "pending"
	AuditDenied  AuditStatus = "denied"
)

// AuditEntry records one completed delegation or execution. Entries are
// immutable once appended and the sequence only grows: two entries per
// completed turn, in turn order.
type AuditEntry struct {
	ID        string      `json:"id"` // ULID
	Timestamp time.Time   `json:"timestamp"`
	Agent     AgentID     `json:"agent"`
	Action    string      `json:"action"`
	Status    AuditStatus `json:"status"`
}

// AuditSink mirrors audit entries to a persistent log. Sinks receive action
// descriptions only, never request text. A sink failure never fails a turn.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
	Close() error
}
