package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Local talks to any OpenAI-compatible server (llama.cpp, LM Studio, vLLM)
// reachable at a configured endpoint. No authentication is sent.
type Local struct {
	endpoint string
	model    string
	http     *http.Client
}

// NewLocal creates a client for an OpenAI-compatible local server.
func NewLocal(endpoint, model string) *Local {
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}
	return &Local{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		http:     newHTTPClient(),
	}
}

func (l *Local) Name() string { return "local" }

// Generate sends a single-turn chat completion using the OpenAI wire format.
func (l *Local) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := l.model
	if opts.Model != "" {
		model = opts.Model
	}
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("local: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("local: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: local: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("local: read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("local: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out.Error != nil {
		return "", fmt.Errorf("local: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("local: empty response")
	}
	return out.Choices[0].Message.Content, nil
}

// IsAvailable probes the models listing endpoint.
func (l *Local) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
