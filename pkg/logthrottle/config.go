package logthrottle

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// MinRepeatingDistance is the minimum time a repeated message of the same
	// type waits before it is logged again. Defaults to 1s.
	MinRepeatingDistance time.Duration `mapstructure:"minRepeatingDistance"`

	// KeyWarnThreshold is the number of distinct type keys above which a
	// warning is logged. Zero disables the warning. Defaults to 10000.
	KeyWarnThreshold int64 `mapstructure:"keyWarnThreshold"`

	// CountFields adds throttle_visits and throttle_window fields to
	// messages carrying a frequency suffix.
	CountFields bool `mapstructure:"countFields"`
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() Config {
	return Config{
		MinRepeatingDistance: DefaultMinRepeatingDistance,
		KeyWarnThreshold:     DefaultKeyWarnThreshold,
	}
}

func (c Config) Validate() error {
	if c.MinRepeatingDistance < 0 {
		return fmt.Errorf("minRepeatingDistance cannot be negative: %s", c.MinRepeatingDistance)
	}
	if c.KeyWarnThreshold < 0 {
		return fmt.Errorf("keyWarnThreshold cannot be negative: %d", c.KeyWarnThreshold)
	}
	return nil
}

// Options converts the configuration into Throttle options.
func (c Config) Options() []Option {
	opts := []Option{
		WithMinRepeatingDistance(c.MinRepeatingDistance),
		WithKeyWarnThreshold(c.KeyWarnThreshold),
	}
	if c.CountFields {
		opts = append(opts, WithCountFields())
	}
	return opts
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	sub := v.Sub("logthrottle")
	if sub == nil {
		return cfg, nil
	}

	// Unset keys keep their defaults; an explicit zero distance is valid.
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load logthrottle config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("logthrottle configuration validation failed: %w", err)
	}

	return cfg, nil
}
