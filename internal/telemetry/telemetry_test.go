package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSetupDisabled(t *testing.T) {
	for name, cfg := range map[string]config.TracingConfig{
		"disabled":    {Enabled: false, Endpoint: "http://localhost:4318"},
		"no endpoint": {Enabled: true},
	} {
		t.Run(name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestSetupEnabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Setup(ctx, config.TracingConfig{
		Enabled:     true,
		Endpoint:    "http://127.0.0.1:1/v1/traces",
		ServiceName: "ragnarok-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, span := Tracer().Start(ctx, "test-span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// Nothing listens on the endpoint, so the flush fails. Shutdown must
	// still return once its context ends.
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_ = shutdown(stopCtx)
}
