package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_PrependsPersona(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A servitude is..."}]}}]}`))
	}))
	defer server.Close()

	adapter, err := New(Config{APIKey: "key-123", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := adapter.Generate(context.Background(), aidomain.Request{
		Model:        "gemini",
		SystemPrompt: "You are a legal assistant.",
		Message:      "What is a servitude?",
	})
	require.NoError(t, err)
	assert.Equal(t, "A servitude is...", resp.Text)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "gemini-pro", resp.Model)

	contents := captured["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	text := parts[0].(map[string]any)["text"].(string)
	assert.Equal(t, "You are a legal assistant.\n\nWhat is a servitude?", text)
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	adapter, err := New(Config{APIKey: "key-123", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = adapter.Generate(context.Background(), aidomain.Request{Model: "gemini-pro", Message: "q"})
	assert.ErrorIs(t, err, aidomain.ErrProviderUnavailable)
}
