package logthrottle

import (
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// ModuleOption configures the fx module.
type ModuleOption func(*moduleOptions)

// WithConfig provides a static Config instead of loading it from viper.
func WithConfig(cfg Config) ModuleOption {
	return func(opts *moduleOptions) {
		opts.config = &cfg
	}
}

type throttleParams struct {
	fx.In
	Log           *zap.Logger
	Cfg           Config
	MeterProvider metric.MeterProvider `optional:"true"`
}

// NewLogThrottleModule provides a shared *Throttle built from the "logthrottle"
// config section. Metrics are recorded when a metric.MeterProvider is present
// in the container.
func NewLogThrottleModule(opts ...ModuleOption) fx.Option {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Module("logthrottle",
		configProvider(cfg),
		fx.Provide(provideThrottle),
	)
}

func configProvider(cfg *moduleOptions) fx.Option {
	if cfg.config != nil {
		return fx.Supply(*cfg.config)
	}
	return fx.Provide(newConfig)
}

func provideThrottle(p throttleParams) (*Throttle, error) {
	if err := p.Cfg.Validate(); err != nil {
		return nil, err
	}

	opts := p.Cfg.Options()
	if p.MeterProvider != nil {
		opts = append(opts, WithMeterProvider(p.MeterProvider))
	}

	p.Log.Info("log throttle initialized",
		zap.Duration("minRepeatingDistance", p.Cfg.MinRepeatingDistance),
		zap.Int64("keyWarnThreshold", p.Cfg.KeyWarnThreshold),
	)

	return New(p.Log, opts...), nil
}
