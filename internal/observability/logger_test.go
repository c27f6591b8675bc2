package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "register")
	log.InfoContext(ctx, "hello")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v body=%s", err, buf.String())
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id = %v, want %s", rec["trace_id"], span.SpanContext().TraceID())
	}

	if rec["span_id"] == nil {
		t.Fatalf("expected span_id in %v", rec)
	}
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")

	if buf.Len() != 0 {
		t.Fatalf("debug line written in prod: %s", buf.String())
	}
}

func TestLogger_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.InfoContext(WithRequestID(context.Background(), "req-42"), "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v body=%s", err, buf.String())
	}

	if rec["request_id"] != "req-42" {
		t.Fatalf("request_id = %v", rec["request_id"])
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("untraced record should not carry trace_id: %v", rec)
	}
}
