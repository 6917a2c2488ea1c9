package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCompleter_RequiresKey(t *testing.T) {
	_, err := NewCompleter(context.Background(), Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestCompleter_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"intent\":\"check_status\",\"employee_name\":\"Budi\"}"}]}}]}`))
	}))
	defer server.Close()

	c, err := NewCompleter(context.Background(), Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gemini-test",
		Temperature: 0.1,
		Timeout:     5 * time.Second,
		System:      "Reply with JSON only.",
	}, zap.NewNop())
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), "cek status cuti budi")
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"check_status","employee_name":"Budi"}`, reply)
	assert.Contains(t, body, "contents")
	assert.Contains(t, body, "systemInstruction")
}

func TestCompleter_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c, err := NewCompleter(context.Background(), Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

// TestCompleter_Live talks to the real API.
// Run with: GEMINI_API_KEY=... go test -run TestCompleter_Live ./internal/infrastructure/external/gemini/...
func TestCompleter_Live(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping live completion test")
	}

	c, err := NewCompleter(context.Background(), Config{APIKey: apiKey, Timeout: 30 * time.Second}, zap.NewNop())
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), `Reply with exactly {"ok":true}`)
	require.NoError(t, err)
	assert.Contains(t, reply, "ok")
}
