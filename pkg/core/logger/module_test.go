package logger

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLoggingModule_FromViper(t *testing.T) {
	restoreDefaults(t)

	// Given: viper with a logger section
	v := viper.New()
	v.Set("logger.level", "debug")
	v.Set("logger.outputPaths", []string{filepath.Join(t.TempDir(), "out.log")})

	// When: starting an app with the module
	var (
		log   *zap.Logger
		level zap.AtomicLevel
	)
	app := fxtest.New(t,
		fx.Supply(v),
		NewZapLoggingModule(),
		fx.Populate(&log, &level),
	)
	app.RequireStart()
	defer app.RequireStop()

	// Then: the logger and its level are provided
	require.NotNil(t, log)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	assert.Same(t, log, defaultLogger.Load())
}

func TestNewZapLoggingModule_WithStaticConfig(t *testing.T) {
	restoreDefaults(t)

	// Given: a static config and no viper in the container
	cfg := Config{
		Level:       zapcore.WarnLevel,
		OutputPaths: []string{filepath.Join(t.TempDir(), "out.log")},
	}

	// When: starting an app with the module
	var level zap.AtomicLevel
	app := fxtest.New(t,
		NewZapLoggingModule(WithLoggerConfig(cfg)),
		fx.Populate(&level),
	)
	app.RequireStart()
	defer app.RequireStop()

	// Then: the static level is used
	assert.Equal(t, zapcore.WarnLevel, level.Level())
}

func TestNewZapLoggingModule_InvalidConfig(t *testing.T) {
	restoreDefaults(t)

	// Given: a static config with a blank output path
	cfg := Config{OutputPaths: []string{""}}

	// When: building the app
	var log *zap.Logger
	app := fx.New(
		NewZapLoggingModule(WithLoggerConfig(cfg)),
		fx.Populate(&log),
	)

	// Then: construction fails
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "failed to create logger")
}

func TestIgnoreSyncError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"nil", nil, false},
		{"einval", &os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}, false},
		{"enotty", &os.PathError{Op: "sync", Path: "/dev/stdout", Err: syscall.ENOTTY}, false},
		{"other path error", &os.PathError{Op: "sync", Path: "/x", Err: syscall.EIO}, true},
		{"plain error", errors.New("disk full"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ignoreSyncError(tt.err)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
