package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func spanContext() trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := InitLogger(&buf, "info")
	ctx := trace.ContextWithSpanContext(context.Background(), spanContext())

	log.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v: %s", err, buf.String())
	}
	if rec["trace_id"] != spanContext().TraceID().String() {
		t.Fatalf("trace_id = %v", rec["trace_id"])
	}
	if rec["span_id"] != spanContext().SpanID().String() {
		t.Fatalf("span_id = %v", rec["span_id"])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := InitLogger(&buf, "warn")
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
}

func TestDetachTraceContextFrom(t *testing.T) {
	src, cancel := context.WithCancel(trace.ContextWithSpanContext(context.Background(), spanContext()))
	cancel()

	ctx := DetachTraceContextFrom(src, context.Background())
	if ctx.Err() != nil {
		t.Fatal("detached context inherited cancellation")
	}
	if got := trace.SpanContextFromContext(ctx); got.TraceID() != spanContext().TraceID() {
		t.Fatalf("trace id = %s", got.TraceID())
	}

	base := context.Background()
	if DetachTraceContextFrom(context.Background(), base) != base {
		t.Fatal("untraced source should return base")
	}
}
