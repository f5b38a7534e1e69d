package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiCompleter implements Completer with the Gemini SDK.
type geminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
}

// newGeminiCompleter creates a Gemini completer. baseURL overrides the
// API endpoint and is empty in production.
func newGeminiCompleter(ctx context.Context, apiKey, model, baseURL string, temperature float64) (*geminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", ProviderGemini)
	}
	if model == "" {
		model = DefaultModels[ProviderGemini]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

// Complete sends the prompt with the persona as system instruction.
func (c *geminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens) //nolint:gosec // token budgets are small constants
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	duration := time.Since(start)

	if err != nil {
		return "", WrapError(fmt.Errorf("generate content failed: %w", err), ProviderGemini)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", WrapError(ErrEmptyResponse, ProviderGemini)
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			out.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", WrapError(ErrEmptyResponse, ProviderGemini)
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "completion finished",
			"provider", ProviderGemini,
			"model", c.model,
			"purpose", req.Purpose,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return text, nil
}

// Provider returns the provider type for this completer.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}
