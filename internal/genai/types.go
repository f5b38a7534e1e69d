// Package genai talks to chat-completion LLM providers.
//
// Architecture:
//   - Gemini: google.golang.org/genai (official SDK)
//   - OpenAI, Groq, Cerebras: github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Every call is made once. Failures come back as *LLMError with a Kind;
// nothing here retries or falls back to another provider.
package genai

import (
	"context"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible).
	ProviderCerebras Provider = "cerebras"
	// ProviderOpenAI represents api.openai.com or any endpoint speaking its API.
	ProviderOpenAI Provider = "openai"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
	ProviderOpenAI:   "https://api.openai.com/v1/",
}

// DefaultModels is used when no model is configured.
var DefaultModels = map[Provider]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderGroq:     "llama-3.3-70b-versatile",
	ProviderCerebras: "llama-3.3-70b",
	ProviderOpenAI:   "gpt-4o-mini",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Purpose labels a completion for logs and metrics.
type Purpose string

const (
	PurposeFallback Purpose = "fallback" // alternatives when nothing matched
	PurposeInitial  Purpose = "initial"  // profile-only text of a blended reply
	PurposeSuggest  Purpose = "suggest"  // study suggestions, study idea not decided
	PurposeQuery    Purpose = "query"    // chat answers
)

// Request is one chat completion: a system persona, a user prompt and a
// token budget.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
	Purpose   Purpose
}

// Completer produces free-form text for a Request.
type Completer interface {
	// Complete returns the trimmed completion text. Errors are *LLMError.
	Complete(ctx context.Context, req Request) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
}

// Recorder receives per-call measurements. *metrics.Metrics implements it.
type Recorder interface {
	RecordLLMRequest(provider, purpose, status string, duration float64)
}
