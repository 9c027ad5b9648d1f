package burst

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Counter counts the burst entries that reached the zap core.
type Counter struct {
	n atomic.Int64
}

// Hook is a zap hook; it only counts burst warnings so bootstrap and
// lifecycle entries do not skew the result.
func (c *Counter) Hook(e zapcore.Entry) error {
	if strings.HasPrefix(e.Message, Message) {
		c.n.Add(1)
	}
	return nil
}

// Count returns the number of burst entries written so far.
func (c *Counter) Count() int64 {
	return c.n.Load()
}

func decorateLogger(log *zap.Logger, c *Counter) *zap.Logger {
	return log.WithOptions(zap.Hooks(c.Hook))
}
