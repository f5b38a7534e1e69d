package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiCompleter implements Completer for OpenAI-compatible providers
// (OpenAI, Groq, Cerebras) via custom BaseURL.
type openaiCompleter struct {
	client      openai.Client
	model       string
	provider    Provider
	temperature float64
}

// newOpenAICompleter creates a completer for an OpenAI-compatible provider.
//
// Parameters:
//   - provider: ProviderOpenAI, ProviderGroq or ProviderCerebras
//   - apiKey: The API key for the provider
//   - model: The model name to use (provider default if empty)
//   - endpoint: Custom base URL (provider default if empty)
func newOpenAICompleter(provider Provider, apiKey, model, endpoint string, temperature float64) (*openaiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}

	baseURL := endpoint
	if baseURL == "" {
		var ok bool
		baseURL, ok = ProviderEndpoint[provider]
		if !ok {
			return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
		}
	}
	if model == "" {
		model = DefaultModels[provider]
	}

	// The SDK retries twice by default; calls here are made exactly once.
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &openaiCompleter{
		client:      client,
		model:       model,
		provider:    provider,
		temperature: temperature,
	}, nil
}

// Complete sends the system persona and prompt as one chat completion.
func (c *openaiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		return "", WrapError(fmt.Errorf("chat completion failed: %w", err), c.provider)
	}

	if len(resp.Choices) == 0 {
		return "", WrapError(ErrEmptyResponse, c.provider)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", WrapError(ErrEmptyResponse, c.provider)
	}

	slog.DebugContext(ctx, "completion finished",
		"provider", c.provider,
		"model", c.model,
		"purpose", req.Purpose,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"duration_ms", duration.Milliseconds())

	return text, nil
}

// Provider returns the provider type for this completer.
func (c *openaiCompleter) Provider() Provider {
	return c.provider
}
