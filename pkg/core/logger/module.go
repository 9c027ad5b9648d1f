package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// ModuleOption configures the logging module.
type ModuleOption func(*moduleOptions)

// WithLoggerConfig provides a static logger Config.
// When set, the "logger" section of viper is not read.
func WithLoggerConfig(cfg Config) ModuleOption {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewZapLoggingModule creates a new fx module for zap logger initialization.
// It provides a configured *zap.Logger and zap.AtomicLevel and routes fx's own
// events through the same logger.
func NewZapLoggingModule(opts ...ModuleOption) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		configProvider(cfg),
		fx.Provide(provideLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func configProvider(opts *moduleOptions) fx.Option {
	if opts.config != nil {
		return fx.Supply(*opts.config)
	}
	return fx.Provide(newConfig)
}

type loggerResult struct {
	fx.Out

	Logger *zap.Logger
	Level  zap.AtomicLevel
}

func provideLogger(lc fx.Lifecycle, conf Config) (loggerResult, error) {
	logger, level, err := newLogger(conf)
	if err != nil {
		return loggerResult{}, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ignoreSyncError(logger.Sync())
		},
	})

	return loggerResult{Logger: logger, Level: level}, nil
}

// ignoreSyncError drops the errors returned when syncing stderr/stdout on
// terminals and pipes, which do not support fsync.
func ignoreSyncError(err error) error {
	if err == nil {
		return nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) &&
		(errors.Is(pathErr.Err, syscall.EINVAL) || errors.Is(pathErr.Err, syscall.ENOTTY)) {
		return nil
	}
	return err
}
