package security

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mediops/internal/domain"
)

// SQLiteAuditSink implements domain.AuditSink on a SQLite database.
// The table is insert-only: there is no update or delete surface.
type SQLiteAuditSink struct {
	db *sql.DB
}

// NewSQLiteAuditSink opens (or creates) a SQLite database at dbPath
// and runs the schema migration.
func NewSQLiteAuditSink(dbPath string) (*SQLiteAuditSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return &SQLiteAuditSink{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_entries (
			id         TEXT PRIMARY KEY,
			timestamp  TEXT NOT NULL,
			agent      TEXT NOT NULL,
			action     TEXT NOT NULL,
			status     TEXT NOT NULL
		)
	`)
	return err
}

// Record inserts an audit entry.
func (s *SQLiteAuditSink) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, timestamp, agent, action, status) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp.Format(time.RFC3339Nano), string(entry.Agent), entry.Action, string(entry.Status),
	)
	if err != nil {
		return domain.NewDomainError("SQLiteAuditSink.Record", domain.ErrAuditWrite, err.Error())
	}
	return nil
}

// Count returns the number of recorded entries.
func (s *SQLiteAuditSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

// List returns all entries in insertion (timestamp) order.
func (s *SQLiteAuditSink) List(ctx context.Context) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, agent, action, status FROM audit_entries ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var ts, agent, status string
		if err := rows.Scan(&entry.ID, &ts, &agent, &entry.Action, &status); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = parsed
		}
		entry.Agent = domain.AgentID(agent)
		entry.Status = domain.AuditStatus(status)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteAuditSink) Close() error {
	return s.db.Close()
}
