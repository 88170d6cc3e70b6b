package llm

import (
	"context"
	"errors"
)

// Role identifies the sender of a message in the conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage reports token counts for a single completion call. Counts are
// per-call, never accumulated across turns.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Reply struct {
	Content string
	Usage   Usage
}

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrProviderCallFailed  = errors.New("provider call failed")
)

// Client is the contract every completion backend implements. A single
// synchronous call per turn: full transcript in, generated text plus token
// counts out. No retries, no streaming.
type Client interface {
	Chat(ctx context.Context, messages []Message) (*Reply, error)
	Name() string
}
