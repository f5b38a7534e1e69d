package genai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/uniadvisor/uniadvisor/internal/config"
)

// blockingCompleter waits for the context or returns a fixed result.
type blockingCompleter struct {
	text  string
	err   error
	block bool
}

func (b blockingCompleter) Complete(ctx context.Context, _ Request) (string, error) {
	if b.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return b.text, b.err
}

func (b blockingCompleter) Provider() Provider { return ProviderGroq }

type recordedCall struct {
	provider, purpose, status string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordLLMRequest(provider, purpose, status string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{provider, purpose, status})
}

func TestWithTimeout_Success(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	c := WithTimeout(blockingCompleter{text: "ok"}, time.Second, rec)

	got, err := c.Complete(context.Background(), Request{Purpose: PurposeQuery})
	if err != nil || got != "ok" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != (recordedCall{"groq", "query", "success"}) {
		t.Errorf("recorded %+v", rec.calls)
	}
	if c.Provider() != ProviderGroq {
		t.Errorf("Provider() = %q", c.Provider())
	}
}

func TestWithTimeout_Expiry(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	c := WithTimeout(blockingCompleter{block: true}, 20*time.Millisecond, rec)

	_, err := c.Complete(context.Background(), Request{Purpose: PurposeFallback})
	if KindOf(err) != KindTimeout {
		t.Fatalf("KindOf(err) = %q, want timeout (err=%v)", KindOf(err), err)
	}
	if len(rec.calls) != 1 || rec.calls[0].status != "timeout" {
		t.Errorf("recorded %+v", rec.calls)
	}
}

func TestWithTimeout_CallerCanceled(t *testing.T) {
	t.Parallel()

	c := WithTimeout(blockingCompleter{block: true}, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Complete(ctx, Request{})
	if KindOf(err) != KindCanceled {
		t.Errorf("KindOf(err) = %q, want canceled", KindOf(err))
	}
}

func TestWithTimeout_ProviderErrorKeepsKind(t *testing.T) {
	t.Parallel()

	orig := &LLMError{Kind: KindAuth, Provider: ProviderGroq, StatusCode: 401, Err: errors.New("bad key")}
	c := WithTimeout(blockingCompleter{err: orig}, time.Second, nil)

	_, err := c.Complete(context.Background(), Request{})
	if KindOf(err) != KindAuth {
		t.Errorf("KindOf(err) = %q, want auth", KindOf(err))
	}
}

func TestWithTimeout_PlainErrorIsWrapped(t *testing.T) {
	t.Parallel()

	c := WithTimeout(blockingCompleter{err: errors.New("connection refused")}, time.Second, nil)

	_, err := c.Complete(context.Background(), Request{})
	var llmErr *LLMError
	if !errors.As(err, &llmErr) {
		t.Fatalf("error %v is not an LLMError", err)
	}
	if llmErr.Kind != KindUnavailable {
		t.Errorf("Kind = %q, want unavailable", llmErr.Kind)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, err := New(ctx, config.LLMConfig{Provider: "mystery"}, nil); err == nil {
		t.Error("New() with unknown provider should fail")
	}

	for _, p := range []string{config.ProviderGemini, config.ProviderGroq, config.ProviderCerebras, config.ProviderOpenAI} {
		c, err := New(ctx, config.LLMConfig{
			Provider:       p,
			Timeout:        time.Second,
			GeminiAPIKey:   "g",
			GroqAPIKey:     "q",
			CerebrasAPIKey: "c",
			OpenAIAPIKey:   "o",
		}, nil)
		if err != nil {
			t.Fatalf("New(%s) error: %v", p, err)
		}
		if string(c.Provider()) != p {
			t.Errorf("New(%s).Provider() = %q", p, c.Provider())
		}
	}
}

func TestNew_WithoutKeyFailsCalls(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = c.Complete(context.Background(), Request{})
	if KindOf(err) != KindAuth || !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Complete() error = %v, want auth/ErrNotConfigured", err)
	}
}
