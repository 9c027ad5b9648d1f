package logthrottle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/Sokol111/logthrottle"

var (
	reportedAttrs   = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", "reported")))
	suppressedAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", "suppressed")))
)

// throttleMetrics counts visits and gates of one Throttle.
type throttleMetrics struct {
	visits metric.Int64Counter
	keys   metric.Int64UpDownCounter
}

func newThrottleMetrics(mp metric.MeterProvider) (*throttleMetrics, error) {
	meter := mp.Meter(meterName)

	visits, err := meter.Int64Counter("logthrottle.visits",
		metric.WithDescription("Log calls seen by the throttle, by outcome"),
		metric.WithUnit("{visit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create visits counter: %w", err)
	}

	keys, err := meter.Int64UpDownCounter("logthrottle.keys",
		metric.WithDescription("Distinct message type keys tracked by the throttle"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create keys counter: %w", err)
	}

	return &throttleMetrics{visits: visits, keys: keys}, nil
}

func noopThrottleMetrics() *throttleMetrics {
	m, _ := newThrottleMetrics(noop.NewMeterProvider())
	return m
}

func (m *throttleMetrics) recordVisit(d decision) {
	if d.report {
		m.visits.Add(context.Background(), 1, reportedAttrs)
	} else {
		m.visits.Add(context.Background(), 1, suppressedAttrs)
	}
}

func (m *throttleMetrics) recordKey() {
	m.keys.Add(context.Background(), 1)
}
