package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		want    Config
		wantErr string
	}{
		{
			name: "absent section",
			want: Config{Interval: DefaultInterval, ServiceName: DefaultServiceName},
		},
		{
			name: "enabled",
			values: map[string]any{
				"enabled":                 true,
				"otel-collector-endpoint": "collector:4317",
				"interval":                "30s",
				"service-name":            "burstdemo",
				"runtime":                 true,
			},
			want: Config{
				Enabled:               true,
				OtelCollectorEndpoint: "collector:4317",
				Interval:              30 * time.Second,
				ServiceName:           "burstdemo",
				Runtime:               true,
			},
		},
		{
			name:    "enabled without endpoint",
			values:  map[string]any{"enabled": true},
			wantErr: "otel-collector-endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: viper with a metrics section
			v := viper.New()
			for key, value := range tt.values {
				v.Set("metrics."+key, value)
			}

			// When: creating config
			cfg, err := newConfig(v)

			// Then: defaults are applied and invalid configs rejected
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestNewMetricsModule_NoopWhenNothingToRead(t *testing.T) {
	// Given: disabled metrics and no readers
	core, logs := observer.New(zapcore.InfoLevel)

	// When: starting an app with the module
	var mp metric.MeterProvider
	app := fxtest.New(t,
		fx.Supply(zap.New(core)),
		NewMetricsModule(WithConfig(Config{})),
		fx.Populate(&mp),
	)
	app.RequireStart()
	defer app.RequireStop()

	// Then: a noop provider is returned
	assert.IsType(t, noop.MeterProvider{}, mp)
	assert.Equal(t, 1, logs.FilterMessage("metrics: disabled").Len())
}

func TestNewMetricsModule_WithReader(t *testing.T) {
	// Given: a manual reader registered in the group
	reader := sdkmetric.NewManualReader()

	// When: starting an app and recording on the provided meter
	var mp metric.MeterProvider
	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		fx.Provide(AsReader(func() sdkmetric.Reader { return reader })),
		NewMetricsModule(WithConfig(Config{})),
		fx.Populate(&mp),
	)
	app.RequireStart()
	counter, err := mp.Meter("test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Then: the reader sees the measurement
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	// And: stopping shuts the provider down
	app.RequireStop()
	assert.Error(t, reader.Collect(context.Background(), &rm))
}

func TestNewMetricsModule_InvalidConfig(t *testing.T) {
	// Given: metrics enabled without an endpoint
	var mp metric.MeterProvider
	app := fx.New(
		fx.NopLogger,
		fx.Supply(zap.NewNop()),
		NewMetricsModule(WithConfig(Config{Enabled: true})),
		fx.Populate(&mp),
	)

	// Then: construction fails
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "otel-collector-endpoint is required")
}

func TestNewProvider_Export(t *testing.T) {
	// Given: an enabled config pointing at a collector that is not running
	cfg := Config{Enabled: true, OtelCollectorEndpoint: "127.0.0.1:4317", Interval: time.Hour}
	applyDefaults(&cfg)

	// When: building the provider
	provider, err := newProvider(context.Background(), cfg, nil)

	// Then: the exporter is created lazily and the provider is usable
	require.NoError(t, err)
	require.NotNil(t, provider)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = provider.Shutdown(ctx)
}
