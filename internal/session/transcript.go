package session

import (
	"errors"
	"fmt"

	"github.com/saleh1312/BarCloudTask/internal/llm"
)

var ErrInvalidRole = errors.New("invalid role")

// Transcript is the append-only conversation history for one session. It is
// what gets sent to the model on every turn; entries are never reordered or
// truncated.
type Transcript struct {
	messages []llm.Message
}

func (t *Transcript) Append(role llm.Role, content string) error {
	switch role {
	case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	t.messages = append(t.messages, llm.Message{Role: role, Content: content})
	return nil
}

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []llm.Message {
	out := make([]llm.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}
