package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "CONFIG_FILE"

type viperOptions struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption is a functional option for configuring the Viper module.
type ViperOption func(*viperOptions)

// WithConfigPath sets a direct path to the configuration file,
// taking precedence over CONFIG_FILE.
func WithConfigPath(path string) ViperOption {
	return func(o *viperOptions) {
		o.configPath = &path
	}
}

// WithoutConfigFile disables loading of any config file.
// Viper stays available for DI and still reads environment variables.
func WithoutConfigFile() ViperOption {
	return func(o *viperOptions) {
		o.noConfigFile = true
	}
}

// FilePath is the path to a configuration file. Empty means none.
type FilePath string

// NewViperModule provides a *viper.Viper backed by an optional config file
// (YAML, JSON or anything viper detects from the extension) with environment
// variables layered on top. Nested keys map to env names by replacing "." and
// "-" with "_", so logthrottle.keyWarnThreshold can be overridden by
// LOGTHROTTLE_KEYWARNTHRESHOLD.
func NewViperModule(opts ...ViperOption) fx.Option {
	o := &viperOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("viper",
		fx.Supply(resolveConfigPath(o)),
		fx.Provide(newViper),
		fx.Invoke(logViperConfig),
	)
}

func resolveConfigPath(o *viperOptions) FilePath {
	switch {
	case o.noConfigFile:
		return ""
	case o.configPath != nil:
		return FilePath(*o.configPath)
	default:
		return FilePath(os.Getenv(EnvConfigFile))
	}
}

func newViper(configFile FilePath) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(string(configFile))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}

	return v, nil
}

func logViperConfig(logger *zap.Logger, v *viper.Viper) {
	logger.Info("configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Strings("configKeys", v.AllKeys()),
	)
}
