package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// instrumented bounds every call with a timeout and records its outcome.
type instrumented struct {
	next     Completer
	timeout  time.Duration
	recorder Recorder
}

// WithTimeout wraps c so that each call runs under timeout (0 disables the
// bound) and reports provider, purpose, status and duration to recorder
// (which may be nil).
//
// Expiry of the timeout always surfaces as KindTimeout. Cancellation of the
// caller's context surfaces as KindCanceled.
func WithTimeout(c Completer, timeout time.Duration, recorder Recorder) Completer {
	return &instrumented{next: c, timeout: timeout, recorder: recorder}
}

func (i *instrumented) Complete(ctx context.Context, req Request) (string, error) {
	callCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := i.next.Complete(callCtx, req)
	duration := time.Since(start)

	if err != nil {
		err = i.normalize(ctx, callCtx, err)
	}

	status := "success"
	if err != nil {
		status = string(KindOf(err))
		slog.WarnContext(ctx, "completion failed",
			"provider", i.next.Provider(),
			"purpose", req.Purpose,
			"kind", status,
			"duration_ms", duration.Milliseconds(),
			"error", err)
	}
	if i.recorder != nil {
		i.recorder.RecordLLMRequest(string(i.next.Provider()), string(req.Purpose), status, duration.Seconds())
	}
	return text, err
}

// normalize makes sure err is an *LLMError and that the kind reflects
// which context ended the call.
func (i *instrumented) normalize(parent, call context.Context, err error) error {
	var kind Kind
	switch {
	case errors.Is(parent.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	case parent.Err() != nil:
		kind = KindCanceled
	case call.Err() != nil:
		kind = KindTimeout
	default:
		return WrapError(err, i.next.Provider())
	}

	status := 0
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		status = llmErr.StatusCode
		err = llmErr.Err
	}
	if kind == KindTimeout && parent.Err() == nil {
		err = fmt.Errorf("no response within %v: %w", i.timeout, err)
	}
	return &LLMError{Kind: kind, Provider: i.next.Provider(), StatusCode: status, Err: err}
}

func (i *instrumented) Provider() Provider {
	return i.next.Provider()
}
