package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"

	"delegation-workers/internal/common/config"
)

// ==========================
// Spans
// ==========================

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func TestStartSpan_RecordsNameAndAttributes(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "find-provider-matches", attribute.Int64("jobKey", 42))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "find-provider-matches", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("jobKey", 42))
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
}

func TestRecordError_SetsErrorStatus(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "judge-submission")
	RecordError(span, errors.New("JUDGE_TIMEOUT"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "JUDGE_TIMEOUT", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}

func TestRecordError_NilIsNoop(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "estimate-price")
	RecordError(span, nil)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}

// ==========================
// Providers
// ==========================

func TestNew_TracingDisabled(t *testing.T) {
	obs := New("worker-manager-test", config.ObservabilityConfig{TracingEnabled: false}, zap.NewNop())

	assert.Nil(t, obs.tracerProvider)
	assert.NotPanics(t, func() {
		RecordJobProcessed(context.Background(), "estimate-price", 0)
		obs.Shutdown()
	})
}
