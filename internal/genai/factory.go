package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uniadvisor/uniadvisor/internal/config"
)

// ErrNotConfigured is wrapped by every error of an unconfigured completer.
var ErrNotConfigured = errors.New("no API key configured")

// New creates the Completer selected by cfg, wrapped with the configured
// timeout and metrics. Returns an error if the provider is unknown.
//
// A provider without an API key still yields a Completer so the service
// can start; every call then fails with KindAuth.
func New(ctx context.Context, cfg config.LLMConfig, recorder Recorder) (Completer, error) {
	provider := Provider(cfg.Provider)
	apiKey := cfg.APIKey()

	if apiKey == "" && (provider == ProviderGemini || provider.IsOpenAICompatible()) {
		slog.WarnContext(ctx, "LLM provider has no API key, completions will fail", "provider", provider)
		return WithTimeout(unconfigured{provider: provider}, cfg.Timeout, recorder), nil
	}

	var (
		c   Completer
		err error
	)
	switch {
	case provider == ProviderGemini:
		c, err = newGeminiCompleter(ctx, apiKey, cfg.Model, "", cfg.Temperature)
	case provider.IsOpenAICompatible():
		endpoint := ""
		if provider == ProviderOpenAI {
			endpoint = cfg.OpenAIBaseURL
		}
		c, err = newOpenAICompleter(provider, apiKey, cfg.Model, endpoint, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "LLM provider configured",
		"provider", provider,
		"model", modelOrDefault(provider, cfg.Model),
		"timeout", cfg.Timeout)

	return WithTimeout(c, cfg.Timeout, recorder), nil
}

func modelOrDefault(p Provider, model string) string {
	if model != "" {
		return model
	}
	return DefaultModels[p]
}

// unconfigured fails every call.
type unconfigured struct {
	provider Provider
}

func (u unconfigured) Complete(context.Context, Request) (string, error) {
	return "", &LLMError{Kind: KindAuth, Provider: u.provider, Err: ErrNotConfigured}
}

func (u unconfigured) Provider() Provider {
	return u.provider
}
