package worker

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Sokol111/logthrottle/pkg/logthrottle"
)

type worker interface {
	Start()
	Stop(ctx context.Context)
}

type runnable interface {
	Run(ctx context.Context) error
}

// Options contains configuration for a worker.
type Options struct {
	ShutdownOnError bool
	ShutdownOnDone  bool
}

// Option is a functional option for configuring a worker.
type Option func(*Options)

// WithShutdown makes the worker trigger application shutdown on fatal error.
func WithShutdown() Option {
	return func(o *Options) {
		o.ShutdownOnError = true
	}
}

// WithShutdownOnDone stops the application once Run returns without error.
// Used by one-shot jobs.
func WithShutdownOnDone() Option {
	return func(o *Options) {
		o.ShutdownOnDone = true
	}
}

type baseWorker struct {
	name       string
	cancelFunc context.CancelFunc
	done       chan struct{}
	log        *zap.Logger
	throttle   *logthrottle.Throttle
	runFunc    func(ctx context.Context) error
	shutdowner fx.Shutdowner
	options    Options
	startOnce  sync.Once
}

// Start runs the worker function in its own goroutine.
func (w *baseWorker) Start() {
	w.startOnce.Do(func() {
		w.log.Info("starting " + w.name)
		ctx, cancel := context.WithCancel(context.Background())
		w.cancelFunc = cancel
		w.done = make(chan struct{})
		go func() {
			defer close(w.done)
			w.run(ctx)
		}()
	})
}

func (w *baseWorker) run(ctx context.Context) {
	err := w.runFunc(ctx)
	if err == nil {
		w.log.Info(w.name + " stopped")
		if w.options.ShutdownOnDone && ctx.Err() == nil {
			w.shutdown(0)
		}
		return
	}

	if w.options.ShutdownOnError {
		w.errLog().Error(w.name+" fatal error, initiating shutdown", zap.Error(err))
		w.shutdown(1)
		return
	}
	w.errLog().Error(w.name+" stopped with error", zap.Error(err))
}

// errLog registers the worker's type key on the first failure.
func (w *baseWorker) errLog() *logthrottle.Logger {
	return w.throttle.ForType("worker:" + w.name)
}

func (w *baseWorker) shutdown(code int) {
	if err := w.shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
		w.log.Error("failed to initiate shutdown", zap.Error(err))
	}
}

// Stop cancels the worker and waits for it to return or for ctx to expire.
func (w *baseWorker) Stop(ctx context.Context) {
	w.log.Info("stopping " + w.name)
	if w.cancelFunc == nil {
		return
	}
	w.cancelFunc()
	select {
	case <-w.done:
	case <-ctx.Done():
		w.log.Warn(w.name+" did not stop in time", zap.Error(ctx.Err()))
	}
}

func registerWorker(lc fx.Lifecycle, w worker) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop(ctx)
			return nil
		},
	})
}

// Register returns an annotated constructor that wraps the dependency T in a
// lifecycle-managed worker. The dependency must have a Run(ctx) error method.
// Error reports go through the shared log throttle keyed by the worker name,
// so a worker failing in a tight restart loop does not flood the output.
//
// Example:
//
//	fx.Provide(worker.Register[*burst]("burst", worker.WithShutdownOnDone()))
//	worker.NewWorkersModule()
func Register[T runnable](name string, opts ...Option) any {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, throttle *logthrottle.Throttle, shutdowner fx.Shutdowner, dep T) worker {
			w := &baseWorker{
				name:       name,
				log:        log,
				throttle:   throttle,
				runFunc:    dep.Run,
				shutdowner: shutdowner,
				options:    options,
			}
			registerWorker(lc, w)
			return w
		},
		fx.ResultTags(`group:"workers"`),
	)
}

// NewWorkersModule forces construction of every registered worker.
func NewWorkersModule() fx.Option {
	return fx.Module("workers",
		fx.Invoke(fx.Annotate(
			func(workers []worker) {},
			fx.ParamTags(`group:"workers"`),
		)),
	)
}
