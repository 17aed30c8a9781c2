package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchdesk/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req ollamaRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.1", req.Model)
			assert.False(t, req.Stream)
			assert.InDelta(t, 0.3, req.Options.Temperature, 0.001)
			json.NewEncoder(w).Encode(ollamaResponse{Response: "Score: 82"})
		case "/api/version":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewOllama(srv.URL, "")
	assert.True(t, c.IsAvailable(context.Background()))

	out, err := c.Generate(context.Background(), "rate this", Options{Temperature: 0.3, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "Score: 82", out)
}

func TestOllamaUnreachable(t *testing.T) {
	c := NewOllama("http://127.0.0.1:1", "")
	assert.False(t, c.IsAvailable(context.Background()))

	_, err := c.Generate(context.Background(), "x", Options{})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "")
	c.baseURL = srv.URL

	out, err := c.Generate(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestOpenAINoKey(t *testing.T) {
	c := NewOpenAI("", "")
	assert.False(t, c.IsAvailable(context.Background()))

	_, err := c.Generate(context.Background(), "x", Options{})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, anthropicDefaultMaxToks, req.MaxTokens, "max_tokens must always be set")
		w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropic("key-test", "")
	c.baseURL = srv.URL

	out, err := c.Generate(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", out)
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer srv.Close()

	c := NewAnthropic("key-test", "")
	c.baseURL = srv.URL

	_, err := c.Generate(context.Background(), "x", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestLocalGenerateAndProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"local says hi"}}]}`))
		case "/v1/models":
			w.Write([]byte(`{"data":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewLocal(srv.URL, "phi-3")
	assert.True(t, c.IsAvailable(context.Background()))

	out, err := c.Generate(context.Background(), "hello", Options{})
	require.NoError(t, err)
	assert.Equal(t, "local says hi", out)
}

func TestGeminiWithoutKey(t *testing.T) {
	c, err := NewGemini(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, c.IsAvailable(context.Background()))

	_, err = c.Generate(context.Background(), "x", Options{})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestFactorySelection(t *testing.T) {
	cfg := config.Default(t.TempDir())

	for provider, name := range map[string]string{
		"ollama":    "ollama",
		"openai":    "openai",
		"anthropic": "anthropic",
		"local":     "local",
	} {
		cfg.Provider = provider
		c, err := New(context.Background(), cfg)
		require.NoError(t, err, provider)
		assert.Equal(t, name, c.Name())
	}

	cfg.Provider = "mystery"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOptionsModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(ollamaResponse{Response: "x"})
	}))
	defer srv.Close()

	c := NewOllama(srv.URL, "default-model")
	_, err := c.Generate(context.Background(), "p", Options{Model: "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", gotModel)
}
