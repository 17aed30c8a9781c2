// Package llm abstracts text generation backends behind a single Client
// interface. Adapters exist for ollama, openai, anthropic, gemini and any
// local OpenAI-compatible server; callers never see provider wire formats.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"researchdesk/internal/config"
)

// ErrBackendUnavailable marks a backend that cannot serve requests right now:
// missing credentials, unreachable endpoint, or a probe failure.
var ErrBackendUnavailable = errors.New("llm: backend unavailable")

// Options tunes one generation call. Zero values mean provider defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	// Model overrides the client's configured model for this call.
	Model string
}

// Client is a text generation backend.
type Client interface {
	// Name identifies the provider, e.g. "ollama".
	Name() string
	// Generate produces a completion for prompt.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	// IsAvailable reports whether the backend can currently serve requests.
	// It never blocks longer than a few seconds.
	IsAvailable(ctx context.Context) bool
}

const defaultTimeout = 120 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// New builds the client selected by cfg.Provider.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.OllamaEndpoint, cfg.Model), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "local":
		return NewLocal(cfg.LocalEndpoint, cfg.Model), nil
	}
	return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}

// All builds one client per provider that has enough configuration to be
// constructed, for availability reporting.
func All(ctx context.Context, cfg *config.Config) []Client {
	clients := []Client{
		NewOllama(cfg.OllamaEndpoint, cfg.Model),
		NewOpenAI(cfg.OpenAIAPIKey, cfg.Model),
		NewAnthropic(cfg.AnthropicAPIKey, cfg.Model),
	}
	if gemini, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model); err == nil {
		clients = append(clients, gemini)
	}
	if cfg.LocalEndpoint != "" {
		clients = append(clients, NewLocal(cfg.LocalEndpoint, cfg.Model))
	}
	return clients
}
