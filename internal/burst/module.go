package burst

import (
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"

	"github.com/Sokol111/logthrottle/pkg/core/worker"
	"github.com/Sokol111/logthrottle/pkg/observability/metrics"
)

// NewModule runs one burst as a worker and stops the application when it ends.
// It registers the reader the summary is collected from and decorates the
// logger with an entry counter.
func NewModule(cfg Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			func() *sdkmetric.ManualReader { return sdkmetric.NewManualReader() },
			metrics.AsReader(func(r *sdkmetric.ManualReader) sdkmetric.Reader { return r }),
			func() *Counter { return &Counter{} },
			newJob,
			worker.Register[*Job]("burst", worker.WithShutdown(), worker.WithShutdownOnDone()),
		),
		fx.Decorate(decorateLogger),
		worker.NewWorkersModule(),
	)
}
