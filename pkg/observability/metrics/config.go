package metrics

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultInterval is the default export interval.
	DefaultInterval = 10 * time.Second

	// DefaultShutdownTimeout bounds the final flush on stop.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultRuntimeStatsInterval is the minimum interval between runtime memstats reads.
	DefaultRuntimeStatsInterval = time.Second

	// DefaultServiceName is reported when no service name is configured.
	DefaultServiceName = "logthrottle"
)

// Config holds the "metrics" section.
type Config struct {
	Enabled               bool          `mapstructure:"enabled"`
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Interval              time.Duration `mapstructure:"interval"`
	ServiceName           string        `mapstructure:"service-name"`
	ServiceVersion        string        `mapstructure:"service-version"`
	Runtime               bool          `mapstructure:"runtime"`
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.OtelCollectorEndpoint == "" {
		return fmt.Errorf("metrics: otel-collector-endpoint is required when enabled")
	}
	if c.Interval < 0 {
		return fmt.Errorf("metrics: interval cannot be negative: %s", c.Interval)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("metrics"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load metrics config: %w", err)
		}
	}
	applyDefaults(&cfg)
	return cfg, cfg.Validate()
}
