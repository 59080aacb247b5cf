// pkg/engine/metrics.go
package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/opd-ai/go-skyward/pkg/engine"

type loopMetrics struct {
	ticks          metric.Int64Counter
	tickDuration   metric.Float64Histogram
	frameDelta     metric.Float64Histogram
	moduleFailures metric.Int64Counter
}

func newLoopMetrics(provider metric.MeterProvider) (*loopMetrics, error) {
	var m metric.Meter
	if provider != nil {
		m = provider.Meter(instrumentationName)
	} else {
		// global provider, no-op unless one is installed
		m = otel.Meter(instrumentationName)
	}

	lm := &loopMetrics{}
	var err error

	lm.ticks, err = m.Int64Counter(
		"simulation.ticks",
		metric.WithDescription("Total simulation ticks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	lm.tickDuration, err = m.Float64Histogram(
		"simulation.tick.duration",
		metric.WithDescription("Wall time spent in one tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	lm.frameDelta, err = m.Float64Histogram(
		"simulation.frame.delta",
		metric.WithDescription("Simulated seconds advanced per tick"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame delta histogram: %w", err)
	}

	lm.moduleFailures, err = m.Int64Counter(
		"simulation.module.failures",
		metric.WithDescription("Effect module updates that returned an error or panicked"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating module failure counter: %w", err)
	}

	return lm, nil
}

func (lm *loopMetrics) recordTick(ctx context.Context, mode Mode, deltaTime float64, took time.Duration) {
	modeAttr := metric.WithAttributes(attribute.String("mode", mode.String()))
	lm.ticks.Add(ctx, 1, modeAttr)
	lm.tickDuration.Record(ctx, float64(took.Microseconds())/1000, modeAttr)
	lm.frameDelta.Record(ctx, deltaTime)
}

func (lm *loopMetrics) recordModuleFailure(ctx context.Context, module string) {
	lm.moduleFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("module", module)))
}
