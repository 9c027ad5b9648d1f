package logger

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Sokol111/logthrottle/pkg/logthrottle"
)

type loggerKey struct{}

type throttleKey struct{}

var (
	defaultLogger   atomic.Pointer[zap.Logger]
	defaultThrottle atomic.Pointer[logthrottle.Throttle]
)

func init() {
	nop := zap.NewNop()
	defaultLogger.Store(nop)
	defaultThrottle.Store(logthrottle.New(nop))
}

// setDefault installs logger as the fallback for Get and the global zap logger.
// The fallback throttle is rebuilt over it, so previously tracked keys start fresh.
func setDefault(logger *zap.Logger) {
	defaultLogger.Store(logger)
	defaultThrottle.Store(logthrottle.New(logger))
	zap.ReplaceGlobals(logger)
}

// SetDefaultThrottle makes throttle the fallback used by Throttled and
// ThrottledError when the context carries none.
func SetDefaultThrottle(throttle *logthrottle.Throttle) {
	if throttle != nil {
		defaultThrottle.Store(throttle)
	}
}

// Get extracts a logger from the context.
// If no logger is found in the context, it returns the default logger.
// This function is safe to call with a nil context.
func Get(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return defaultLogger.Load()
	}
	if ctxLogger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && ctxLogger != nil {
		return ctxLogger
	}
	return defaultLogger.Load()
}

// With returns a new context with the provided logger attached.
func With(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithThrottle returns a new context carrying the throttle used by Throttled.
func WithThrottle(ctx context.Context, throttle *logthrottle.Throttle) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, throttleKey{}, throttle)
}

// Throttled returns a throttled logger for the message type key, using the
// throttle stored in ctx or the package default when none is present.
func Throttled(ctx context.Context, key string) *logthrottle.Logger {
	return throttleFrom(ctx).ForType(key)
}

// ThrottledError is Throttled with the message type derived from err.
func ThrottledError(ctx context.Context, err error) *logthrottle.Logger {
	return throttleFrom(ctx).ForError(err)
}

func throttleFrom(ctx context.Context) *logthrottle.Throttle {
	if ctx != nil {
		if th, ok := ctx.Value(throttleKey{}).(*logthrottle.Throttle); ok && th != nil {
			return th
		}
	}
	return defaultThrottle.Load()
}
