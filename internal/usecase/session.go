package usecase

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"mediops/internal/domain"
)

// Session holds the append-only transcript for one conversation.
// Messages are never mutated after being appended.
type Session struct {
	mu        sync.RWMutex
	ID        string
	msgs      []domain.ChatMessage
	CreatedAt time.Time
}

// NewSession creates a new empty session with a generated ULID.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        generateULID(now),
		msgs:      make([]domain.ChatMessage, 0),
		CreatedAt: now,
	}
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// AppendUser appends the user's message and returns it.
func (s *Session) AppendUser(sender, text string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        generateULID(time.Now()),
		Role:      domain.RoleUser,
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
	s.append(msg)
	return msg
}

// AppendAgent appends a specialist's reply and returns it. The sender is
// the agent that actually produced the reply, never the router.
func (s *Session) AppendAgent(agent domain.AgentID, text string, doc *domain.Document, citations []domain.Citation) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        generateULID(time.Now()),
		Role:      domain.RoleAgent,
		Text:      text,
		Sender:    string(agent),
		Timestamp: time.Now(),
		Document:  doc,
		Citations: citations,
	}
	s.append(msg)
	return msg
}

func (s *Session) append(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

// Messages returns a copy of the transcript (thread-safe).
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}
