package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompleter_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: `{"intent":"list_cuti_pending"}`}},
			},
		})
	}))
	defer server.Close()

	c := NewCompleter(Config{
		APIKey:      "test-key",
		BaseURL:     server.URL + "/v1/",
		Model:       "qwen2.5:3b",
		Temperature: 0.1,
		Timeout:     5 * time.Second,
		System:      "Reply with JSON only.",
	}, zap.NewNop())

	reply, err := c.Complete(context.Background(), "list semua cuti yang pending")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"list_cuti_pending"}`, reply)

	assert.Equal(t, "qwen2.5:3b", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "list semua cuti yang pending", got.Messages[1].Content)
}

func TestCompleter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewCompleter(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, zap.NewNop())
	_, err := c.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCompleter_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewCompleter(Config{APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: 50 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCompleter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	c := NewCompleter(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, zap.NewNop())
	_, err := c.Complete(context.Background(), "hi")
	assert.Error(t, err)
}

// TestCompleter_Live talks to the real API.
// Run with: OPENAI_API_KEY=... go test -run TestCompleter_Live ./internal/infrastructure/external/openai/...
func TestCompleter_Live(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping live completion test")
	}

	c := NewCompleter(Config{APIKey: apiKey, Model: openai.GPT4oMini, Timeout: 30 * time.Second}, zap.NewNop())
	reply, err := c.Complete(context.Background(), `Reply with exactly {"ok":true}`)
	require.NoError(t, err)
	assert.Contains(t, reply, "ok")
}
