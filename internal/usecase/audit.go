package usecase

import (
	"sync"
	"time"

	"mediops/internal/domain"
)

// AuditTrail is the session-scoped, append-only record of delegations and
// executions. The sequence only grows; entries are immutable once appended.
type AuditTrail struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// NewAuditTrail creates an empty audit trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{entries: make([]domain.AuditEntry, 0)}
}

// Append stamps and appends an entry, returning the stored copy.
func (t *AuditTrail) Append(agent domain.AgentID, action string, status domain.AuditStatus) domain.AuditEntry {
	now := time.Now()
	entry := domain.AuditEntry{
		ID:        generateULID(now),
		Timestamp: now,
		Agent:     agent,
		Action:    action,
		Status:    status,
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
	return entry
}

// Entries returns a copy of the audit sequence in append order.
func (t *AuditTrail) Entries() []domain.AuditEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *AuditTrail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
