package burst

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Sokol111/logthrottle/pkg/logthrottle"
)

// Message is the text of every burst warning.
const Message = "simulated upstream failure"

var errUpstream = errors.New("upstream unavailable")

// Summary describes a finished burst.
type Summary struct {
	Visits     int64
	Emitted    int64
	Reported   int64
	Suppressed int64
	Keys       int64
	Elapsed    time.Duration
}

// Job is a one-shot burst run as a worker.
type Job struct {
	cfg      Config
	throttle *logthrottle.Throttle
	log      *zap.Logger
	reader   *sdkmetric.ManualReader
	counter  *Counter
	keys     []string

	summary Summary
	done    chan struct{}
}

func newJob(cfg Config, throttle *logthrottle.Throttle, log *zap.Logger, reader *sdkmetric.ManualReader, counter *Counter) *Job {
	return &Job{
		cfg:      cfg,
		throttle: throttle,
		log:      log,
		reader:   reader,
		counter:  counter,
		keys:     lo.Times(cfg.Types, func(i int) string { return fmt.Sprintf("upstream-%d", i) }),
		done:     make(chan struct{}),
	}
}

// Run logs the burst from cfg.Workers goroutines and records a Summary.
func (j *Job) Run(ctx context.Context) error {
	defer close(j.done)

	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	for w := range j.cfg.Workers {
		g.Go(func() error {
			return j.runWorker(gCtx, w)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// A stopped burst still reports what it logged before the stop.
	summary, err := j.summarize(context.WithoutCancel(ctx), time.Since(start))
	if err != nil {
		return err
	}
	j.summary = summary

	j.log.Info("burst finished",
		zap.Int64("visits", summary.Visits),
		zap.Int64("emitted", summary.Emitted),
		zap.Int64("suppressed", summary.Suppressed),
		zap.Int64("keys", summary.Keys),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return nil
}

func (j *Job) runWorker(ctx context.Context, worker int) error {
	for i := range j.cfg.Visits {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fields := []zap.Field{
			zap.String("request_id", uuid.NewString()),
			zap.Int("worker", worker),
		}
		if j.cfg.Errors && i%4 == 0 {
			err := errors.Wrap(errUpstream, "call upstream")
			j.throttle.ForError(err).Warn(Message, append(fields, zap.Error(err))...)
		} else {
			key := j.keys[(worker+i)%len(j.keys)]
			j.throttle.ForType(key).Warn(Message, append(fields, zap.String("type", key))...)
		}

		if j.cfg.Pause > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(j.cfg.Pause):
			}
		}
	}
	return nil
}

func (j *Job) summarize(ctx context.Context, elapsed time.Duration) (Summary, error) {
	var rm metricdata.ResourceMetrics
	if err := j.reader.Collect(ctx, &rm); err != nil {
		return Summary{}, fmt.Errorf("failed to collect throttle metrics: %w", err)
	}

	s := Summary{
		Emitted: j.counter.Count(),
		Keys:    j.throttle.Keys(),
		Elapsed: elapsed,
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "logthrottle.visits" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch outcome, _ := dp.Attributes.Value(attribute.Key("outcome")); outcome.AsString() {
				case "reported":
					s.Reported += dp.Value
				case "suppressed":
					s.Suppressed += dp.Value
				}
			}
		}
	}
	s.Visits = s.Reported + s.Suppressed
	return s, nil
}

// Summary waits for Run to finish and returns its result.
func (j *Job) Summary(ctx context.Context) (Summary, error) {
	select {
	case <-j.done:
		return j.summary, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}
