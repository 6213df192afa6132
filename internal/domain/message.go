package domain

import "time"

// Role constants for chat messages.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Citation is a grounding source attached to an agent reply when a
// search-capable tool was used during generation.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is a single entry in the session transcript. Messages are
// append-only: once constructed they are never mutated, and they own any
// attached document or citations.
type ChatMessage struct {
	ID        string     `json:"id"` // ULID
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	Sender    string     `json:"sender"` // user label or AgentID
	Timestamp time.Time  `json:"timestamp"`
	Document  *Document  `json:"document,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}
