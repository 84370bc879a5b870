package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWritesJSONToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.Debug(context.Background(), "visibility resolved", Int("candidates", 12), String("phase", "visibility"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "visibility resolved" {
		t.Fatalf("msg = %v, want %q", rec["msg"], "visibility resolved")
	}
	if rec["candidates"] != float64(12) {
		t.Fatalf("candidates = %v, want 12", rec["candidates"])
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "dropped")
	log.Warn(context.Background(), "kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestWithRunLoggerStoresRunID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, log := WithRunLogger(context.Background(), base)
	id := RunIDFromContext(ctx)
	if id == "" {
		t.Fatal("expected run_id on context")
	}
	if LoggerFromContext(ctx) == nil {
		t.Fatal("expected logger on context")
	}

	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || RunIDFromContext(ctx2) != id {
		t.Fatalf("EnsureRunID replaced existing id %q with %q", id, id2)
	}

	log.Info(ctx, "hello")
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("log line missing run_id %q: %q", id, buf.String())
	}
}

func TestNoopAndNilContext(t *testing.T) {
	if LoggerFromContext(nil) != nil {
		t.Fatal("expected nil logger from nil context")
	}
	ctx, l := WithRunLogger(context.Background(), nil)
	if l == nil || RunIDFromContext(ctx) == "" {
		t.Fatal("expected noop logger and run id when base is nil")
	}
	l.Error(ctx, "ignored", Err(nil))
}
