package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	// Context is accepted for forward compatibility but not consulted when
	// resolving the intent.
	Context map[string]any `json:"context,omitempty"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatResponse struct {
	NaturalLanguageAnswer string     `json:"natural_language_answer"`
	SQLQuery              string     `json:"sql_query"`
	TokenUsage            TokenUsage `json:"token_usage"`
	Provider              string     `json:"provider"`
	LatencyMs             float64    `json:"latency_ms"`
	SessionID             string     `json:"session_id"`
	Status                string     `json:"status"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		s.writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if len(req.Context) > 0 {
		s.logger.Debug().Str("session", sessionID).Int("context_keys", len(req.Context)).Msg("context received")
	}

	start := time.Now()

	sess := s.store.GetOrCreate(sessionID)
	result, err := sess.HandleUserMessage(r.Context(), req.Message)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("chat error")
		s.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	latencyMs := math.Round(time.Since(start).Seconds()*1000*100) / 100

	s.writeJSON(w, ChatResponse{
		NaturalLanguageAnswer: result.Answer,
		SQLQuery:              result.Query,
		TokenUsage: TokenUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		Provider:  s.provider,
		LatencyMs: latencyMs,
		SessionID: sessionID,
		Status:    "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Status: "error"})
}
