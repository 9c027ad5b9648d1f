package logthrottle

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_LevelsForwardToSameLevel(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *Logger, msg string)
		level zapcore.Level
	}{
		{"debug", func(l *Logger, msg string) { l.Debug(msg) }, zapcore.DebugLevel},
		{"info", func(l *Logger, msg string) { l.Info(msg) }, zapcore.InfoLevel},
		{"warn", func(l *Logger, msg string) { l.Warn(msg) }, zapcore.WarnLevel},
		{"error", func(l *Logger, msg string) { l.Error(msg) }, zapcore.ErrorLevel},
		{"dpanic", func(l *Logger, msg string) { l.DPanic(msg) }, zapcore.DPanicLevel},
		{"log", func(l *Logger, msg string) { l.Log(zapcore.WarnLevel, msg) }, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a throttle
			throttle, logs, clock := newTestThrottle(t)
			logger := throttle.ForType(tt.name)

			// When: logging twice inside the window and once after
			tt.log(logger, "first")
			tt.log(logger, "second")
			clock.AdvanceMillis(11)
			tt.log(logger, "third")

			// Then: the first and third reach zap at the same level
			require.Equal(t, 2, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
			assert.Equal(t, "first", logs.All()[0].Message)
			assert.Equal(t, tt.level, logs.All()[1].Level)
			assert.Equal(t, "third"+fmt.Sprintf(FrequencyFormat, 2, 11), logs.All()[1].Message)
		})
	}
}

func TestLogger_FieldsPassUnchanged(t *testing.T) {
	// Given: a throttle
	throttle, logs, _ := newTestThrottle(t)

	// When: logging with fields
	throttle.ForType("key").Warn("message with fields",
		zap.String("string_field", "value"),
		zap.Int("int_field", 42),
		zap.Bool("bool_field", true),
	)

	// Then: all fields are present
	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "value", ctx["string_field"])
	assert.Equal(t, int64(42), ctx["int_field"])
	assert.Equal(t, true, ctx["bool_field"])
}

func TestLogger_VisitsCountedRegardlessOfLevel(t *testing.T) {
	// Given: an underlying logger that only emits errors
	core, logs := observer.New(zapcore.ErrorLevel)
	clock := NewManualClock(0)
	throttle := New(zap.New(core), WithMinRepeatingDistance(testDistance), WithClock(clock))
	logger := throttle.ForType("key")
	require.False(t, logger.Enabled(zapcore.DebugLevel))

	// When: a disabled debug call is followed by an error of the same type
	logger.Debug("invisible")
	logger.Error("visible?")

	// Then: the debug call took the report, so the error is suppressed
	assert.Equal(t, 0, logs.Len())

	// And: the error after the window carries both visits
	clock.AdvanceMillis(11)
	logger.Error("visible")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible"+fmt.Sprintf(FrequencyFormat, 2, 11), logs.All()[0].Message)
}

func TestLogger_QueriesDoNotVisit(t *testing.T) {
	// Given: a throttle over a named logger at info level
	core, logs := observer.New(zapcore.InfoLevel)
	throttle := New(zap.New(core).Named("svc"), WithMinRepeatingDistance(testDistance), WithClock(NewManualClock(0)))
	logger := throttle.ForType("key")

	// When: querying the logger many times
	for i := 0; i < 5; i++ {
		assert.True(t, logger.Enabled(zapcore.WarnLevel))
		assert.False(t, logger.Enabled(zapcore.DebugLevel))
		assert.Equal(t, zapcore.InfoLevel, logger.Level())
		assert.Equal(t, "svc", logger.Name())
	}

	// Then: the gate saw no visit, so the next call is the first report
	logger.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
	assert.Equal(t, "svc", logs.All()[0].LoggerName)
}

func TestLogger_WithSharesGate(t *testing.T) {
	// Given: a logger and a child with extra fields
	throttle, logs, _ := newTestThrottle(t)
	logger := throttle.ForType("key")
	child := logger.With(zap.String("component", "child"))

	// When: the child logs first and the parent repeats
	child.Info("from child")
	logger.Info("from parent")

	// Then: the parent is suppressed by the shared gate
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "child", logs.All()[0].ContextMap()["component"])
}

func TestLogger_CallerPointsAtCallSite(t *testing.T) {
	// Given: an underlying logger with caller annotation
	core, logs := observer.New(zapcore.DebugLevel)
	throttle := New(zap.New(core, zap.AddCaller()), WithClock(NewManualClock(0)))

	// When: logging through the facade
	throttle.ForType("caller").Warn("where am I")
	throttle.ForType("caller-sugar").Sugar().Warnf("where am %s", "I")

	// Then: the caller is this test file, not the facade
	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		require.True(t, entry.Caller.Defined)
		assert.Equal(t, "logger_test.go", filepath.Base(entry.Caller.File))
	}
}

func TestLogger_ErrorsFromZapPropagate(t *testing.T) {
	// Given: a throttle over a development logger, where DPanic panics
	throttle := New(zap.NewExample(zap.Development()), WithClock(NewManualClock(0)))
	logger := throttle.ForType("dpanic")

	// Then: the reported call panics like zap does
	assert.Panics(t, func() { logger.DPanic("boom") })

	// And: a suppressed call returns quietly
	assert.NotPanics(t, func() { logger.DPanic("boom") })
}
