package core

import (
	"time"

	"go.uber.org/fx"

	"github.com/Sokol111/logthrottle/pkg/core/config"
	"github.com/Sokol111/logthrottle/pkg/core/logger"
	"github.com/Sokol111/logthrottle/pkg/logthrottle"
	"github.com/Sokol111/logthrottle/pkg/observability/metrics"
)

type coreOptions struct {
	loggerConfig       *logger.Config
	throttleConfig     *logthrottle.Config
	metricsConfig      *metrics.Config
	configPath         string
	disableDotEnv      bool
	disableViperConfig bool
}

// Option is a functional option for configuring the core module.
type Option func(*coreOptions)

// WithLoggerConfig provides a static logger Config (useful for tests).
// When set, the logger configuration will not be loaded from viper.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(opts *coreOptions) {
		opts.loggerConfig = &cfg
	}
}

// WithThrottleConfig provides a static throttle Config.
// When set, the logthrottle section of viper is not read.
func WithThrottleConfig(cfg logthrottle.Config) Option {
	return func(opts *coreOptions) {
		opts.throttleConfig = &cfg
	}
}

// WithMetricsConfig provides a static metrics Config.
// When set, the metrics section of viper is not read.
func WithMetricsConfig(cfg metrics.Config) Option {
	return func(opts *coreOptions) {
		opts.metricsConfig = &cfg
	}
}

// WithConfigFile loads configuration from path instead of CONFIG_FILE.
func WithConfigFile(path string) Option {
	return func(opts *coreOptions) {
		opts.configPath = path
	}
}

// WithoutEnvFile disables loading of .env file.
func WithoutEnvFile() Option {
	return func(opts *coreOptions) {
		opts.disableDotEnv = true
	}
}

// WithoutConfigFile disables loading of any config file.
func WithoutConfigFile() Option {
	return func(opts *coreOptions) {
		opts.disableViperConfig = true
	}
}

// NewCoreModule provides config, the zap logger, the meter provider and the
// log throttle built on them.
//
// Example usage:
//
//	// Production - loads config from .env, CONFIG_FILE and environment
//	core.NewCoreModule()
//
//	// Testing - with static configs
//	core.NewCoreModule(
//	    core.WithLoggerConfig(logger.Config{...}),
//	    core.WithThrottleConfig(logthrottle.Config{...}),
//	    core.WithoutEnvFile(),
//	    core.WithoutConfigFile(),
//	)
func NewCoreModule(opts ...Option) fx.Option {
	cfg := &coreOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.StartTimeout(30*time.Second),
		fx.StopTimeout(30*time.Second),

		dotEnvModule(cfg),
		viperModule(cfg),
		loggerModule(cfg),
		metricsModule(cfg),
		throttleModule(cfg),
		fx.Invoke(logger.SetDefaultThrottle),
	)
}

func dotEnvModule(cfg *coreOptions) fx.Option {
	if cfg.disableDotEnv {
		return fx.Options()
	}
	return config.NewDotEnvModule()
}

func viperModule(cfg *coreOptions) fx.Option {
	switch {
	case cfg.disableViperConfig:
		return config.NewViperModule(config.WithoutConfigFile())
	case cfg.configPath != "":
		return config.NewViperModule(config.WithConfigPath(cfg.configPath))
	default:
		return config.NewViperModule()
	}
}

func loggerModule(cfg *coreOptions) fx.Option {
	if cfg.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithLoggerConfig(*cfg.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}

func metricsModule(cfg *coreOptions) fx.Option {
	if cfg.metricsConfig != nil {
		return metrics.NewMetricsModule(metrics.WithConfig(*cfg.metricsConfig))
	}
	return metrics.NewMetricsModule()
}

func throttleModule(cfg *coreOptions) fx.Option {
	if cfg.throttleConfig != nil {
		return logthrottle.NewLogThrottleModule(logthrottle.WithConfig(*cfg.throttleConfig))
	}
	return logthrottle.NewLogThrottleModule()
}
