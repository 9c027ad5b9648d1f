package config

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type dotEnvOptions struct {
	path     string
	override bool
}

// DotEnvOption is a functional option for configuring the dotenv module.
type DotEnvOption func(*dotEnvOptions)

// WithDotEnvPath sets a custom path to the .env file.
func WithDotEnvPath(path string) DotEnvOption {
	return func(o *dotEnvOptions) {
		o.path = path
	}
}

// WithDotEnvOverride lets values from the file replace variables already
// present in the process environment.
func WithDotEnvOverride() DotEnvOption {
	return func(o *dotEnvOptions) {
		o.override = true
	}
}

// NewDotEnvModule loads environment variables from a .env file
// (".env" in the working directory by default). The file is read when the
// module is created so that viper, constructed later, already sees the values.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	o := &dotEnvOptions{path: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	load := godotenv.Load
	if o.override {
		load = godotenv.Overload
	}
	err := load(o.path)

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if err != nil {
						logger.Debug("no .env file loaded", zap.String("path", o.path), zap.Error(err))
						return nil
					}
					logger.Info("loaded .env file", zap.String("path", o.path), zap.Bool("override", o.override))
					return nil
				},
			})
		}),
	)
}
