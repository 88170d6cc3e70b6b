// Package session owns per-conversation state: the message transcript, the
// provider handle, and the turn orchestration that resolves a model reply
// against the intent catalog.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/saleh1312/BarCloudTask/internal/intent"
	"github.com/saleh1312/BarCloudTask/internal/llm"
)

var ErrUnknownIntent = errors.New("unknown intent")

// NoSQL is the query sentinel returned when the model did not recognize an
// intent.
const NoSQL = "no-sql"

// Result is the outcome of one completed turn.
type Result struct {
	Query  string
	Answer string
	Usage  llm.Usage
}

type Session struct {
	ID string

	mu         sync.Mutex
	transcript Transcript
	client     llm.Client
	catalog    *intent.Catalog
	logger     zerolog.Logger
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a session and seeds its transcript with the system prompt.
// The prompt is built exactly once here, never per turn.
func New(id string, client llm.Client, catalog *intent.Catalog, logger zerolog.Logger) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		client:    client,
		catalog:   catalog,
		logger:    logger,
		createdAt: now,
		updatedAt: now,
	}
	s.transcript.Append(llm.RoleSystem, BuildSystemPrompt(catalog, now))
	return s
}

// HandleUserMessage runs one turn: append the user message, call the
// provider with the full transcript, record the raw assistant text, then
// decode it and resolve the intent. The session mutex serializes turns, so
// concurrent requests for the same session id cannot interleave transcripts.
func (s *Session) HandleUserMessage(ctx context.Context, text string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()

	if err := s.transcript.Append(llm.RoleUser, text); err != nil {
		return nil, err
	}

	reply, err := s.client.Chat(ctx, s.transcript.Messages())
	if err != nil {
		return nil, err
	}

	// The raw text is recorded before decoding is attempted, so the
	// transcript always reflects what the model actually sent. A malformed
	// reply therefore stays in context for subsequent turns.
	if err := s.transcript.Append(llm.RoleAssistant, reply.Content); err != nil {
		return nil, err
	}

	decoded, err := decodeReply(reply.Content)
	if err != nil {
		return nil, err
	}

	if !decoded.IsIntentRecognized {
		var answer string
		if decoded.FriendlyMessage != nil {
			answer = *decoded.FriendlyMessage
		}
		s.logger.Debug().Str("session", s.ID).Msg("intent not recognized")
		return &Result{Query: NoSQL, Answer: answer, Usage: reply.Usage}, nil
	}

	def, err := s.catalog.Find(*decoded.Intent)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, *decoded.Intent)
	}

	query, answer, err := def.Render(decoded.Params)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("session", s.ID).Str("intent", def.Name).Msg("intent resolved")

	return &Result{Query: query, Answer: answer, Usage: reply.Usage}, nil
}

// Transcript returns a copy of the session's message history.
func (s *Session) Transcript() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
