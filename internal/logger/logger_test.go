package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/uniadvisor/uniadvisor/internal/ctxutil"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse JSON log %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logLevel string
	}{
		{"Valid debug level", "debug", "debug"},
		{"Valid info level", "info", "info"},
		{"Valid warn level", "warn", "warning"},
		{"Upper-case warning", "WARNING", "warning"},
		{"Valid error level", "error", "error"},
		{"Invalid level defaults to info", "invalid", "info"},
		{"Empty level defaults to info", "", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level)
			if log == nil {
				t.Fatal("New() returned nil")
			}
			if got := log.GetLevel(); got != tt.logLevel {
				t.Errorf("New(%q) log level = %q, want %q", tt.level, got, tt.logLevel)
			}
		})
	}
}

func TestLogger_KeyNames(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("disk almost full")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["message"] != "disk almost full" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
	for _, raw := range []string{"msg", "time"} {
		if _, ok := entry[raw]; ok {
			t.Errorf("raw slog key %q should be renamed", raw)
		}
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("matcher").
		WithRequestID("req-1").
		WithFields(map[string]any{"matches": 3}).
		WithField("policy", "weighted").
		Info("matched")

	entry := decodeLines(t, &buf)[0]
	want := map[string]any{
		"module":     "matcher",
		"request_id": "req-1",
		"matches":    float64(3),
		"policy":     "weighted",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown", "attempt", 1)
	log.Error("shown")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
	if entries[0]["level"] != "warning" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
	if entries[1]["message"] != "shown" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestLogger_ContextEnrichment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithUserID(context.Background(), "student-7")
	ctx = ctxutil.WithRequestID(ctx, "req-abc")
	log.InfoContext(ctx, "profile stored")
	log.Info("no context")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["user_id"] != "student-7" || entries[0]["request_id"] != "req-abc" {
		t.Errorf("context values missing: %v", entries[0])
	}
	if _, ok := entries[1]["user_id"]; ok {
		t.Errorf("unexpected user_id without context: %v", entries[1])
	}
}

func TestLogger_ShutdownWithoutRemote(t *testing.T) {
	log := New("info")
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
	if log.DroppedRemote() != 0 {
		t.Error("DroppedRemote() should be 0 without a remote sink")
	}
}
