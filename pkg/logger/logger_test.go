package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "adminstore/internal/core/context"
)

func TestFromContext_UsesStoredLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), &Logger{zap.New(core).Sugar()})
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext("trace-1", "req-1"))
	ctx = appctx.WithTenantID(ctx, "acme")

	Error(ctx, "write failed", "table", "denominations")
	Warn(ctx, "slow")

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "write failed", first.Message)
	assert.Equal(t, map[string]any{
		"table":      "denominations",
		"trace_id":   "trace-1",
		"request_id": "req-1",
		"tenant_id":  "acme",
	}, first.ContextMap())
	assert.Equal(t, "slow", logs.All()[1].Message)
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, Default().SugaredLogger, FromContext(context.Background()).SugaredLogger)
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}
