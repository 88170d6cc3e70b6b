package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saleh1312/BarCloudTask/internal/intent"
	"github.com/saleh1312/BarCloudTask/internal/llm"
	"github.com/saleh1312/BarCloudTask/internal/session"
)

type fakeClient struct {
	reply string
	usage llm.Usage
	err   error
}

func (f *fakeClient) Chat(ctx context.Context, messages []llm.Message) (*llm.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Reply{Content: f.reply, Usage: f.usage}, nil
}

func (f *fakeClient) Name() string { return "fake/test" }

func newTestServer(t *testing.T, client llm.Client) (*Server, *session.Store) {
	t.Helper()

	catalog, err := intent.NewCatalog("Table orders: month, sales", []intent.Definition{
		{
			Name:           "monthly_sales",
			Params:         []string{"month"},
			SQLTemplate:    "SELECT SUM(sales) FROM orders WHERE month='{month}'",
			AnswerTemplate: "Here is the total sales for {month}.",
			Summary:        "Total sales for a given month.",
		},
	})
	require.NoError(t, err)

	store := session.NewStore(client, catalog, zerolog.Nop())
	return NewServer(store, "fake/test", 0, zerolog.Nop()), store
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChatSuccess(t *testing.T) {
	client := &fakeClient{
		reply: `{"is_intent_recognized": true, "friendly_message": null, "intent": "monthly_sales", "params": {"month": "2024-05"}}`,
		usage: llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}
	server, _ := newTestServer(t, client)
	handler := server.Handler()

	rec := postChat(t, handler, `{"session_id": "s1", "message": "What were sales last month?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "SELECT SUM(sales) FROM orders WHERE month='2024-05'", resp.SQLQuery)
	assert.Equal(t, "Here is the total sales for 2024-05.", resp.NaturalLanguageAnswer)
	assert.Equal(t, 100, resp.TokenUsage.PromptTokens)
	assert.Equal(t, 20, resp.TokenUsage.CompletionTokens)
	assert.Equal(t, 120, resp.TokenUsage.TotalTokens)
	assert.Equal(t, "fake/test", resp.Provider)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "ok", resp.Status)
	assert.GreaterOrEqual(t, resp.LatencyMs, 0.0)
}

func TestHandleChatUnrecognizedIntent(t *testing.T) {
	client := &fakeClient{
		reply: `{"is_intent_recognized": false, "friendly_message": "I don't understand", "intent": null, "params": null}`,
	}
	server, _ := newTestServer(t, client)

	rec := postChat(t, server.Handler(), `{"session_id": "s1", "message": "sing me a song"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no-sql", resp.SQLQuery)
	assert.Equal(t, "I don't understand", resp.NaturalLanguageAnswer)
}

func TestHandleChatMalformedReply(t *testing.T) {
	client := &fakeClient{reply: "sorry, I can't do JSON today"}
	server, store := newTestServer(t, client)

	rec := postChat(t, server.Handler(), `{"session_id": "s1", "message": "question"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error)

	// The malformed text still landed in the transcript.
	sess := store.Get("s1")
	require.NotNil(t, sess)
	messages := sess.Transcript()
	require.Len(t, messages, 3)
	assert.Equal(t, "sorry, I can't do JSON today", messages[2].Content)
}

func TestHandleChatSessionReuse(t *testing.T) {
	client := &fakeClient{
		reply: `{"is_intent_recognized": false, "friendly_message": "hi", "intent": null, "params": null}`,
	}
	server, store := newTestServer(t, client)
	handler := server.Handler()

	rec := postChat(t, handler, `{"session_id": "s1", "message": "first"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postChat(t, handler, `{"session_id": "s1", "message": "second"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, store.Len())
	assert.Len(t, store.Get("s1").Transcript(), 5)
}

func TestHandleChatMintsSessionID(t *testing.T) {
	client := &fakeClient{
		reply: `{"is_intent_recognized": false, "friendly_message": "hi", "intent": null, "params": null}`,
	}
	server, store := newTestServer(t, client)

	rec := postChat(t, server.Handler(), `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotNil(t, store.Get(resp.SessionID))
}

func TestHandleChatContextAcceptedButUnused(t *testing.T) {
	client := &fakeClient{
		reply: `{"is_intent_recognized": false, "friendly_message": "hi", "intent": null, "params": null}`,
	}
	server, _ := newTestServer(t, client)

	rec := postChat(t, server.Handler(), `{"session_id": "s1", "message": "hello", "context": {"tenant": "acme", "locale": "en"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleChatMissingMessage(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	rec := postChat(t, server.Handler(), `{"session_id": "s1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestHandleChatInvalidBody(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	rec := postChat(t, server.Handler(), `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatProviderFailure(t *testing.T) {
	client := &fakeClient{err: llm.ErrProviderCallFailed}
	server, _ := newTestServer(t, client)

	rec := postChat(t, server.Handler(), `{"session_id": "s1", "message": "hello"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "provider call failed")
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHandleIndexServesChatPage(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.True(t, strings.Contains(rec.Body.String(), "/api/chat"))
}
