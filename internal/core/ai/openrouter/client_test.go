package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-pantry/internal/core/ai/provider"
	"recipe-pantry/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":" {\"steps\":[]} "}}]}`))
	}))
	defer server.Close()

	client := NewClient(provider.Config{APIKey: "or-key", Model: "test/model", BaseURL: server.URL})
	text, err := client.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, text)
}

func TestClient_GenerateUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"empty choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(provider.Config{APIKey: "or-key", Model: "m", BaseURL: server.URL})
			_, err := client.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.True(t, common.IsUpstreamError(err))
		})
	}
}

func TestClient_GenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(provider.Config{APIKey: "or-key", Model: "m", BaseURL: url})
	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, common.IsUpstreamError(err))
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(provider.Config{Model: "m"})
	_, err := client.Generate(context.Background(), "prompt")
	assert.True(t, common.IsConfigurationError(err))
}
