package telemetry_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tpm/backend/internal/infrastructure/telemetry"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "tpm-backend-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())

	// Disabled provider still hands out a usable (no-op) tracer
	tracer := tp.Tracer("pnl")
	require.NotNil(t, tracer)
	_, span := tracer.Start(ctx, "pnl_report.generate")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_ShutdownWithCancelledContext(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled: false,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	// A disabled provider has nothing to flush, so a dead context is fine
	assert.NoError(t, tp.Shutdown(cancelled))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// Requires a real OTEL collector; opt in by pointing
	// TEST_OTEL_COLLECTOR_ENDPOINT at one.
	endpoint := os.Getenv("TEST_OTEL_COLLECTOR_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_OTEL_COLLECTOR_ENDPOINT not set, skipping collector integration test")
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: endpoint,
		SamplingRatio:     1.0,
		ServiceName:       "tpm-backend-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("pnl").Start(ctx, "pnl_report.generate")
	span.End()

	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}
