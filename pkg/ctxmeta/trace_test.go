package ctxmeta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Gunvolt24/cartsync/pkg/ctxmeta"
)

func TestTraceAndSpanIDs_FromActiveSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "Reconciler.RunOnce")
	defer span.End()

	traceID, ok := ctxmeta.TraceIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, span.SpanContext().TraceID().String(), traceID)

	spanID, ok := ctxmeta.SpanIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, span.SpanContext().SpanID().String(), spanID)
}

func TestTraceAndSpanIDs_NoSpan(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"background": context.Background(),
		"nil":        nil, //nolint:staticcheck // nil-контекст не должен паниковать
	} {
		t.Run(name, func(t *testing.T) {
			id, ok := ctxmeta.TraceIDFromContext(ctx)
			require.False(t, ok)
			require.Empty(t, id)

			id, ok = ctxmeta.SpanIDFromContext(ctx)
			require.False(t, ok)
			require.Empty(t, id)
		})
	}
}
