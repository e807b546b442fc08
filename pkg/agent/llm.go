package agent

import (
	"context"
	"encoding/json"
)

// Role identifies who produced a dialogue message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is the model's request to run one tool.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolResult is the outcome of one executed tool call, fed back to the model.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// Message is one entry of the dialogue history.
type Message struct {
	Role Role
	Text string

	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall
	// ToolResult is set on tool messages.
	ToolResult *ToolResult
}

// Reply is one model completion: final text, tool calls, or both.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// CompletionRequest is one dialogue turn handed to the model.
type CompletionRequest struct {
	Instructions string
	Messages     []Message
	Tools        []Tool
}

// LLM produces dialogue completions. Implementations must be safe for
// sequential reuse across turns; the session serializes calls itself.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (*Reply, error)
}
