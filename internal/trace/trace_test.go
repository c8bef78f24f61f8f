package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDisabledByDefault(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Enabled() {
		t.Error("Expected tracing disabled")
	}
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	if _, _, ok := GetTraceFields(ctx); ok {
		t.Error("Expected no trace fields when disabled")
	}
}

func TestSpansAreExported(t *testing.T) {
	var buf bytes.Buffer
	if err := Start(&buf, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "audit.Run")
	traceID, spanID, ok := GetTraceFields(ctx)
	Counts(span, "fills", 4, "ignored", "x")
	Fail(span, errors.New("fills[2].underlying"))
	span.End()

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if Enabled() {
		t.Error("Expected tracing disabled after Shutdown")
	}

	if !ok || len(traceID) != 32 || len(spanID) != 16 {
		t.Errorf("Expected hex trace/span ids, got %q %q %v", traceID, spanID, ok)
	}
	out := buf.String()
	for _, want := range []string{"audit.Run", "fills", "fills[2].underlying"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected exported span to contain %q", want)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Error("Expected non-int attribute to be dropped")
	}
}

func TestFailIgnoresNil(t *testing.T) {
	_, span := StartSpan(context.Background(), "noop")
	Fail(span, nil)
	span.End()
}
