package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestNewSpan_RecordsAttributesAndErrors(t *testing.T) {
	rec := recordSpans(t)

	span, ctx := NewSpan(context.Background(), "notifications.fan_out", attribute.String("notification.type", "post"))
	child, _ := NewSpan(ctx, "child")
	child.End()

	span.AddAttributes(attribute.Int("notification.recipients", 3))
	span.SetError(errors.New("insert failed"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "child", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())

	parent := ended[1]
	assert.Equal(t, codes.Error, parent.Status().Code)
	assert.Contains(t, parent.Attributes(), attribute.String("notification.type", "post"))
	assert.Contains(t, parent.Attributes(), attribute.Int("notification.recipients", 3))
	require.Len(t, parent.Events(), 1)
}

func TestSpan_NilSafe(t *testing.T) {
	var s *Span
	assert.NotPanics(t, func() {
		s.AddAttributes(attribute.Bool("x", true))
		s.SetError(errors.New("boom"))
		s.End()
	})
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "agora-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
