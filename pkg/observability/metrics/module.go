// Package metrics provides the OpenTelemetry MeterProvider the log throttle
// records into. With metrics enabled the instruments are exported over OTLP;
// in-process readers can be added through the "metric_readers" group.
package metrics

import (
	"context"
	"fmt"

	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// Option configures the metrics module.
type Option func(*moduleOptions)

// WithConfig provides a static Config (useful for tests).
func WithConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// AsReader annotates a constructor returning sdkmetric.Reader so the reader
// joins the provider.
func AsReader(f any) any {
	return fx.Annotate(f, fx.ResultTags(`group:"metric_readers"`))
}

type providerParams struct {
	fx.In
	Lc      fx.Lifecycle
	Log     *zap.Logger
	Cfg     Config
	Readers []sdkmetric.Reader `group:"metric_readers"`
}

// NewMetricsModule provides metric.MeterProvider. It is a noop provider when
// metrics are disabled and no reader was registered.
func NewMetricsModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("metrics",
		configProvider(o),
		fx.Provide(provideMeterProvider),
	)
}

func configProvider(o *moduleOptions) fx.Option {
	if o.config != nil {
		cfg := *o.config
		applyDefaults(&cfg)
		return fx.Provide(func() (Config, error) { return cfg, cfg.Validate() })
	}
	return fx.Provide(newConfig)
}

func provideMeterProvider(p providerParams) (metric.MeterProvider, error) {
	provider, err := newProvider(context.Background(), p.Cfg, p.Readers)
	if err != nil {
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}
	if provider == nil {
		p.Log.Info("metrics: disabled")
		return noop.NewMeterProvider(), nil
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if p.Cfg.Enabled {
				otel.SetMeterProvider(provider)
			}
			if p.Cfg.Runtime {
				if err := otelruntime.Start(
					otelruntime.WithMeterProvider(provider),
					otelruntime.WithMinimumReadMemStatsInterval(DefaultRuntimeStatsInterval),
				); err != nil {
					return fmt.Errorf("failed to start runtime metrics: %w", err)
				}
			}
			p.Log.Info("metrics initialized",
				zap.Bool("export", p.Cfg.Enabled),
				zap.String("endpoint", p.Cfg.OtelCollectorEndpoint),
				zap.Duration("interval", p.Cfg.Interval),
				zap.Int("readers", len(p.Readers)),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})

	return provider, nil
}
