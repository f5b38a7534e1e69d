package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// MultiHandler writes each record to every sink that accepts its level:
// stdout JSON first, then the Better Stack buffer when configured.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans out to the non-nil handlers, in order.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{
		handlers: slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool { return h == nil }),
	}
}

// Enabled reports whether any sink accepts level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.handlers, func(s slog.Handler) bool {
		return s.Enabled(ctx, level)
	})
}

// Handle gives each accepting sink its own copy of r. A failing sink does
// not stop the others; failures are joined and name the sink position.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var failed []error
	for i, sink := range h.handlers {
		if !sink.Enabled(ctx, r.Level) {
			continue
		}
		if err := sink.Handle(ctx, r.Clone()); err != nil {
			failed = append(failed, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(failed...)
}

// WithAttrs implements slog.Handler.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	next := make([]slog.Handler, len(h.handlers))
	for i, sink := range h.handlers {
		next[i] = fn(sink)
	}
	return &MultiHandler{handlers: next}
}
