package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sokol111/logthrottle/pkg/core/logger"
	"github.com/Sokol111/logthrottle/pkg/logthrottle"
)

func TestNewCoreModule_WithStaticConfigs(t *testing.T) {
	// Given: static logger and throttle configs
	logCfg := logger.Config{
		Level:       zapcore.InfoLevel,
		OutputPaths: []string{filepath.Join(t.TempDir(), "out.log")},
	}
	throttleCfg := logthrottle.Config{MinRepeatingDistance: 250 * time.Millisecond}

	// When: starting an app with the core module
	var (
		log      *zap.Logger
		mp       metric.MeterProvider
		throttle *logthrottle.Throttle
	)
	app := fxtest.New(t,
		NewCoreModule(
			WithLoggerConfig(logCfg),
			WithThrottleConfig(throttleCfg),
			WithoutEnvFile(),
			WithoutConfigFile(),
		),
		fx.Populate(&log, &mp, &throttle),
	)
	app.RequireStart()
	defer app.RequireStop()

	// Then: every component is provided
	require.NotNil(t, log)
	require.NotNil(t, mp)
	require.NotNil(t, throttle)
	assert.Equal(t, 250*time.Millisecond, throttle.MinRepeatingDistance())
}

func TestNewCoreModule_FromConfigFile(t *testing.T) {
	// Given: a config file with logger and throttle sections
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
logger:
  level: info
  outputPaths: ["`+logPath+`"]
logthrottle:
  minRepeatingDistance: 2s
  countFields: true
`), 0o644))

	// When: starting an app and logging a burst through the throttle
	var throttle *logthrottle.Throttle
	app := fxtest.New(t,
		NewCoreModule(WithConfigFile(configPath), WithoutEnvFile()),
		fx.Populate(&throttle),
	)
	app.RequireStart()
	for range 5 {
		logger.Throttled(context.Background(), "k").Info("burst")
	}
	app.RequireStop()

	// Then: the container throttle backs the logger package and one entry is written
	assert.Equal(t, 2*time.Second, throttle.MinRepeatingDistance())
	assert.Equal(t, int64(1), throttle.Keys())
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), `"msg":"burst"`))
	assert.NotContains(t, string(data), "visited")
}
