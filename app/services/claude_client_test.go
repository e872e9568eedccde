package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appestoicismo/newsllater/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaudeClient(url string) *ClaudeClient {
	return NewClaudeClient(config.ClaudeConfig{
		BaseURL:     url + "/",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
}

func TestNewClaudeClientDefaults(t *testing.T) {
	c := NewClaudeClient(config.ClaudeConfig{})
	assert.Equal(t, "https://api.anthropic.com", c.BaseURL)
	assert.Equal(t, "claude-sonnet-4-20250514", c.Model)
	assert.Equal(t, "2023-06-01", c.APIVersion)
	assert.Equal(t, 4000, c.MaxTokens)
	assert.Equal(t, 120*time.Second, c.Timeout)
}

func TestClaudeClientGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var got claudeMessagesReq
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
			assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Passo 1"}]}`))
		}))
		defer srv.Close()

		text, err := newTestClaudeClient(srv.URL).Generate(ctx, "sk-test", "olá")
		require.NoError(t, err)
		assert.Equal(t, "Passo 1", text)

		assert.Equal(t, "claude-sonnet-4-20250514", got.Model)
		assert.Equal(t, 4000, got.MaxTokens)
		assert.InDelta(t, 0.7, got.Temperature, 1e-9)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "user", got.Messages[0].Role)
		assert.Equal(t, "olá", got.Messages[0].Content)
	})

	t.Run("ProviderErrorMessage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		}))
		defer srv.Close()

		_, err := newTestClaudeClient(srv.URL).Generate(ctx, "bad", "p")
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
		assert.Equal(t, "invalid x-api-key", pe.Message)
	})

	t.Run("ProviderErrorStatusText", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("upstream down"))
		}))
		defer srv.Close()

		_, err := newTestClaudeClient(srv.URL).Generate(ctx, "k", "p")
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusServiceUnavailable, pe.StatusCode)
		assert.Equal(t, "Service Unavailable", pe.Message)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":[]}`))
		}))
		defer srv.Close()

		_, err := newTestClaudeClient(srv.URL).Generate(ctx, "k", "p")
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "empty response", pe.Message)
	})

	t.Run("TransportError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newTestClaudeClient(url).Generate(ctx, "k", "p")
		var te *TransportError
		require.True(t, errors.As(err, &te))
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		client := newTestClaudeClient(srv.URL)
		client.HTTPClient.Timeout = 20 * time.Millisecond

		_, err := client.Generate(ctx, "k", "p")
		var te *TransportError
		require.True(t, errors.As(err, &te))
	})
}
