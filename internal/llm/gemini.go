package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini talks to the Gemini API through the official genai SDK.
type Gemini struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGemini creates a Gemini client. Construction succeeds without a key; the
// client just reports itself unavailable until one is configured.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	g := &Gemini{apiKey: apiKey, model: model}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Generate produces a completion through the SDK.
func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: gemini: no api key", ErrBackendUnavailable)
	}
	model := g.model
	if opts.Model != "" {
		model = opts.Model
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// IsAvailable reports whether an API key is configured.
func (g *Gemini) IsAvailable(ctx context.Context) bool {
	return g.client != nil
}
