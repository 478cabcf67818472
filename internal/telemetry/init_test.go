package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vanshika/hopgraph/internal/config"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{}, "test", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected no-op shutdown, got %v", err)
	}
}

func TestInitStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := Init(ctx, config.TelemetryConfig{Enabled: true, ServiceName: "hopgraph-test"}, "test", &buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, span := Tracer().Start(ctx, "traversal.test")
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "traversal.test") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "hopgraph-test") {
		t.Fatalf("expected service name on the span resource, got %q", buf.String())
	}
}
