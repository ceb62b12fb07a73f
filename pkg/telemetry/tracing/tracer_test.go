package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"webeng-hq/hello/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T, ratio float64) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(config.TracingConfig{
		Enabled:     true,
		ServiceName: "hello-test",
		SampleRatio: ratio,
	}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(context.Background(), config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("expected no trace ID from noop tracer")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_ExportsSpans(t *testing.T) {
	tracer, exporter := newTestTracer(t, 1)

	ctx, parent := tracer.Start(context.Background(), "http.request")
	_, child := tracer.Start(ctx, "ratelimit.admit")
	SetRateLimitAttributes(child, "10.0.0.1", false, 0, 59)
	child.End()
	parent.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	admit := spans[0]
	if admit.Name != "ratelimit.admit" {
		t.Fatalf("expected child span first, got %q", admit.Name)
	}
	if admit.Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("expected admit span to be a child of the request span")
	}
	if v, ok := attrValue(admit.Attributes, AttrRateLimitAllowed); !ok || v.AsBool() {
		t.Errorf("expected allowed=false, got %v", v)
	}
	if v, ok := attrValue(admit.Attributes, AttrRateLimitRetryAfter); !ok || v.AsInt64() != 59 {
		t.Errorf("expected retry_after 59, got %v", v)
	}
}

func TestTracer_AllowedDecisionHasNoRetryAfter(t *testing.T) {
	tracer, exporter := newTestTracer(t, 1)

	_, span := tracer.Start(context.Background(), "ratelimit.admit")
	SetRateLimitAttributes(span, "10.0.0.1", true, 4, 0)
	span.End()
	_ = tracer.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if _, ok := attrValue(spans[0].Attributes, AttrRateLimitRetryAfter); ok {
		t.Error("expected no retry_after attribute on admitted request")
	}
	if v, _ := attrValue(spans[0].Attributes, AttrRateLimitRemaining); v.AsInt64() != 4 {
		t.Errorf("expected remaining 4, got %v", v)
	}
}

func TestTracer_NeverSample(t *testing.T) {
	tracer, exporter := newTestTracer(t, 0)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()
	_ = tracer.ForceFlush(context.Background())

	if got := len(exporter.GetSpans()); got != 0 {
		t.Errorf("expected no exported spans, got %d", got)
	}
}

func TestSetStatus(t *testing.T) {
	tracer, exporter := newTestTracer(t, 1)

	_, ok := tracer.Start(context.Background(), "ok")
	SetStatus(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	SetStatus(failed, errors.New("boom"))
	failed.End()

	_ = tracer.ForceFlush(context.Background())
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "boom" {
		t.Errorf("expected Error status, got %+v", spans[1].Status)
	}
	if len(spans[1].Events) == 0 {
		t.Error("expected recorded exception event")
	}
}

func TestPropagation_RoundTrip(t *testing.T) {
	tracer, _ := newTestTracer(t, 1)

	ctx, span := tracer.Start(context.Background(), "outgoing")
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	if headers.Get("traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	extracted := Extract(context.Background(), headers)
	if TraceID(extracted) != TraceID(ctx) {
		t.Errorf("expected trace ID %q, got %q", TraceID(ctx), TraceID(extracted))
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{2, "ParentBased{root:AlwaysOnSampler"},
		{0, "ParentBased{root:AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		got := newSampler(tt.ratio).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("newSampler(%v).Description() = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}

var _ sdktrace.SpanExporter = (*tracetest.InMemoryExporter)(nil)
