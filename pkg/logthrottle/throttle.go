// Package logthrottle suppresses bursts of repeated log messages.
//
// A Throttle wraps a *zap.Logger. Callers classify each log call by a type
// key and log through the returned Logger:
//
//	var throttle = logthrottle.New(log, logthrottle.WithMinRepeatingDistance(time.Second))
//
//	throttle.ForType("NO RESPONSE").Warn("no response from server", zap.String("reqId", reqId))
//	throttle.ForError(err).Error("request failed", zap.Error(err))
//
// The first message of a type is always logged. Repeats of that type are
// dropped until more than the minimum repeating distance has passed since the
// last logged one; the next message is then logged with a suffix such as
//
//	no response from server -visited 2300 logs of same type in last 1000 millis
//
// The check happens lazily on each call. There are no timers, so a type that
// goes quiet after a burst never reports the tail of that burst.
//
// Every distinct key is remembered for the lifetime of the Throttle. Keys
// must come from a small, fixed set: putting request IDs or similar values in
// a key defeats aggregation and grows memory without bound.
package logthrottle

import (
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultMinRepeatingDistance is used when no distance is configured.
	DefaultMinRepeatingDistance = time.Second

	// DefaultKeyWarnThreshold is the number of distinct keys above which the
	// throttle warns about key cardinality.
	DefaultKeyWarnThreshold = 10000

	keyWarnInterval = time.Minute
)

type options struct {
	minDistance      time.Duration
	clock            Clock
	meterProvider    metric.MeterProvider
	keyWarnThreshold int64
	countFields      bool
}

// Option configures a Throttle.
type Option func(*options)

// WithMinRepeatingDistance sets the minimum time a repeated message must wait
// before it is logged again. Negative values are treated as zero.
func WithMinRepeatingDistance(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.minDistance = d
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMeterProvider records visit metrics on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithKeyWarnThreshold sets how many distinct keys may be tracked before the
// throttle logs a warning. Zero disables the warning. Keys are never rejected.
func WithKeyWarnThreshold(n int64) Option {
	return func(o *options) {
		o.keyWarnThreshold = n
	}
}

// WithCountFields attaches throttle_visits and throttle_window fields to
// messages that carry a frequency suffix.
func WithCountFields() Option {
	return func(o *options) {
		o.countFields = true
	}
}

// Throttle hands out per-type loggers that share suppression state by key.
// Independent Throttles never share state.
type Throttle struct {
	base        *zap.Logger
	fwd         *zap.Logger
	clock       Clock
	minDistance time.Duration
	countFields bool

	registry    *gateRegistry
	metrics     *throttleMetrics
	keyWarn     rate.Sometimes
	keyWarnFrom int64
}

// New creates a Throttle forwarding to log.
func New(log *zap.Logger, opts ...Option) *Throttle {
	o := options{
		minDistance:      DefaultMinRepeatingDistance,
		clock:            SystemClock{},
		keyWarnThreshold: DefaultKeyWarnThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Throttle{
		base:        log,
		fwd:         log.WithOptions(zap.AddCallerSkip(1)),
		clock:       o.clock,
		minDistance: o.minDistance,
		countFields: o.countFields,
		keyWarn:     rate.Sometimes{Interval: keyWarnInterval},
		keyWarnFrom: o.keyWarnThreshold,
	}

	t.metrics = noopThrottleMetrics()
	if o.meterProvider != nil {
		m, err := newThrottleMetrics(o.meterProvider)
		if err != nil {
			log.Warn("log throttle metrics disabled", zap.Error(err))
		} else {
			t.metrics = m
		}
	}

	t.registry = newGateRegistry(o.minDistance.Milliseconds(), t.gateCreated)
	return t
}

// ForType returns the logger for messages of the given type.
func (t *Throttle) ForType(key string) *Logger {
	return t.newLogger(t.registry.gateFor(KeyFromString(key)))
}

// ForError returns the logger for messages about err, keyed by the stack
// traces recorded in err's chain. See KeyFromError.
func (t *Throttle) ForError(err error) *Logger {
	return t.newLogger(t.registry.gateFor(keyFromError(err, 3)))
}

// MinRepeatingDistance returns the configured window.
func (t *Throttle) MinRepeatingDistance() time.Duration {
	return t.minDistance
}

// Keys returns the number of distinct type keys seen so far.
func (t *Throttle) Keys() int64 {
	return t.registry.len()
}

func (t *Throttle) newLogger(g *typeGate) *Logger {
	return &Logger{t: t, gate: g, fwd: t.fwd}
}

// visit records a visit on g and reports whether the call should be logged.
func (t *Throttle) visit(g *typeGate) (decision, bool) {
	d := g.recordVisit(t.clock.NowMillis())
	t.metrics.recordVisit(d)
	return d, d.report
}

// countFieldsFor returns the structured form of d's frequency annotation.
func (t *Throttle) countFieldsFor(d decision) []zap.Field {
	if !t.countFields || d.suffix == "" {
		return nil
	}
	return []zap.Field{
		zap.Int64("throttle_visits", d.count),
		zap.Duration("throttle_window", time.Duration(d.elapsed)*time.Millisecond),
	}
}

func (t *Throttle) gateCreated(size int64) {
	t.metrics.recordKey()
	if t.keyWarnFrom <= 0 || size <= t.keyWarnFrom {
		return
	}
	t.keyWarn.Do(func() {
		t.base.Warn("log throttle is tracking too many message types; keys are never evicted",
			zap.Int64("keys", size),
			zap.Int64("threshold", t.keyWarnFrom),
		)
	})
}
