// =============================
// File: internal/logger/logger_test.go
// =============================
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{Logger: zap.New(core), config: DefaultConfig()}, logs
}

func TestWithOperationTagsCorrelationID(t *testing.T) {
	l, logs := observed()

	l.WithOperation("buy").Info("settled")
	l.WithOperation("buy").Info("settled")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	second := entries[1].ContextMap()
	assert.Equal(t, "buy", first["operation"])
	assert.NotEmpty(t, first["correlation_id"])
	// Each operation gets its own id.
	assert.NotEqual(t, first["correlation_id"], second["correlation_id"])
}

func TestWithComponentKeepsHelpers(t *testing.T) {
	l, logs := observed()

	// The component-scoped copy still carries the wrapper's helpers.
	l.WithComponent("server").LogError("request failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "server", ctx["component"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogErrorWithoutError(t *testing.T) {
	l, logs := observed()

	l.LogError("nothing wrong", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	_, ok := entries[0].ContextMap()["error"]
	assert.False(t, ok)
}

func TestTrackPerformanceEmitsDuration(t *testing.T) {
	l, logs := observed()

	end := l.TrackPerformance("migrate")
	end()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Starting operation", entries[0].Message)
	assert.Equal(t, "Operation completed", entries[1].Message)

	done := entries[1].ContextMap()
	assert.Equal(t, "migrate", done["operation"])
	assert.Contains(t, done, "duration")
	// Start and end share one correlation id.
	assert.Equal(t, entries[0].ContextMap()["correlation_id"], done["correlation_id"])
}
