package llm

import (
	"context"
	"encoding/json"

	"cookmate/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// ToolCall is a tool request in wire form: the tool name plus a raw JSON
// argument object. Parsing into typed arguments happens downstream.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ChatResponse is one assistant turn. The model either answered in plain
// text or requested tool calls; both can be present when the model
// narrates alongside its calls.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     shared.TokenUsage
}

// ChatGenerator is an interface for a conversational model that can
// request tool calls against the local stores.
type ChatGenerator interface {
	Chat(ctx context.Context, system, user string) (ChatResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
