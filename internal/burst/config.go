// Package burst drives concurrent bursts of repeated warnings through a log
// throttle and summarizes how many of them were written.
//
// Basic usage:
//
//	app := fx.New(
//		core.NewCoreModule(core.WithoutConfigFile()),
//		burst.NewModule(burst.Config{Workers: 8, Visits: 1000, Types: 3}),
//	)
package burst

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the shape of a burst.
type Config struct {
	// Workers is the number of concurrent goroutines.
	Workers int

	// Visits is the number of warnings each worker logs.
	Visits int

	// Types is the number of distinct message types the warnings are spread over.
	Types int

	// Pause is the delay between two warnings of the same worker.
	Pause time.Duration

	// Errors makes every fourth warning go through the error classifier
	// instead of a string key.
	Errors bool
}

// DefaultConfig returns the burst used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Workers: 8,
		Visits:  1000,
		Types:   3,
		Pause:   time.Millisecond,
	}
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive: %d", c.Workers))
	}
	if c.Visits < 0 {
		errs = append(errs, fmt.Errorf("visits cannot be negative: %d", c.Visits))
	}
	if c.Types <= 0 {
		errs = append(errs, fmt.Errorf("types must be positive: %d", c.Types))
	}
	if c.Pause < 0 {
		errs = append(errs, fmt.Errorf("pause cannot be negative: %s", c.Pause))
	}
	return errors.Join(errs...)
}
