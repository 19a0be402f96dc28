package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	err := Initialize(false, VerbosityInfo)
	require.NoError(t, err)
	require.NotNil(t, Logger)
	assert.False(t, JSONOutput)
}

func TestInitializeJSON(t *testing.T) {
	err := Initialize(true, VerbosityInfo)
	require.NoError(t, err)
	require.NotNil(t, Logger)
	assert.True(t, JSONOutput)
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{3, zapcore.DebugLevel},
		{-1, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "warn", LevelName(0))
	assert.Equal(t, "info", LevelName(1))
	assert.Equal(t, "debug", LevelName(2))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithComponent(ctx, "server")

	fields := FieldsFromContext(ctx)
	assert.Equal(t, []interface{}{FieldRequestID, "req-1", FieldComponent, "server"}, fields)
}

func TestLoggerFromContext(t *testing.T) {
	require.NoError(t, Initialize(false, VerbosityUser))

	// Without fields, the global logger is returned as-is.
	assert.Same(t, Logger, LoggerFromContext(context.Background()))

	// With fields, a child logger is returned.
	ctx := WithSessionID(context.Background(), "sess-1")
	assert.NotSame(t, Logger, LoggerFromContext(ctx))
}

func TestNoOpBeforeInitialize(t *testing.T) {
	// The package-level helpers must be safe even if Initialize was
	// never called; init() installs a no-op logger.
	Infow("should not panic", "k", "v")
	Debugf("should not panic %d", 1)
}
