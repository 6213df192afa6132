package security

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediops/internal/domain"
)

func TestFileAuditSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileAuditSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Record(ctx, domain.AuditEntry{
		ID: "01A", Agent: domain.AgentRouter, Action: "delegated to billing", Status: domain.AuditSuccess,
	}))
	require.NoError(t, sink.Record(ctx, domain.AuditEntry{
		ID: "01B", Agent: domain.AgentBilling, Action: "generated INVOICE", Status: domain.AuditSuccess,
	}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first domain.AuditEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, domain.AgentRouter, first.Agent)
	require.False(t, first.Timestamp.IsZero(), "timestamp must be stamped on write")
}

func TestSQLiteAuditSinkInsertOnly(t *testing.T) {
	sink, err := NewSQLiteAuditSink(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	for i, agent := range []domain.AgentID{domain.AgentRouter, domain.AgentPharmacy} {
		require.NoError(t, sink.Record(ctx, domain.AuditEntry{
			ID:        string(rune('A' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
			Agent:     agent,
			Action:    "turn step",
			Status:    domain.AuditSuccess,
		}))
	}

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	entries, err := sink.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, domain.AgentRouter, entries[0].Agent)
	require.Equal(t, domain.AgentPharmacy, entries[1].Agent)

	// Duplicate IDs are rejected: entries are immutable, never upserted.
	err = sink.Record(ctx, domain.AuditEntry{ID: "A", Agent: domain.AgentRouter, Action: "x", Status: domain.AuditDenied})
	require.Error(t, err)
}
