package domain

import "encoding/json"

// ToolSchema describes a tool for the LLM function-calling protocol.
// Tools in this core are declared to the backend, which may invoke them;
// they are never executed locally.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents the backend's request to invoke a declared tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
