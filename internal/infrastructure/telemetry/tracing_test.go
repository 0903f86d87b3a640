package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oilmill/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "production", "record_batch",
		telemetry.AttrOilType, "GROUNDNUT",
		telemetry.AttrQuantity, decimal.RequireFromString("1000.50"),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "production.record_batch", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(telemetry.AttrOilType, "GROUNDNUT"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(telemetry.AttrQuantity, "1000.5"))
}

func TestEnd(t *testing.T) {
	sr := setupTestTracer(t)

	t.Run("marks failure", func(t *testing.T) {
		_, span := telemetry.StartServiceSpan(context.Background(), "byproduct", "record_sale")
		telemetry.End(span, errors.New("boom"))
	})
	t.Run("marks success", func(t *testing.T) {
		_, span := telemetry.StartServiceSpan(context.Background(), "byproduct", "record_sale")
		telemetry.End(span, nil)
	})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}
