package bot

import (
	"context"

	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "gitlab.com/dumpyara/dumpyarabot/internal/bot"

// Request outcomes recorded on the command counters.
const (
	outcomeUsage     = "usage"
	outcomeInvalid   = "invalid"
	outcomeDenied    = "denied"
	outcomeExisting  = "existing"
	outcomeStarted   = "started"
	outcomeCancelled = "cancelled"
	outcomeNotFound  = "not_found"
	outcomeFinished  = "finished"
	outcomeError     = "error"
)

type botMetrics struct {
	dumps   metric.Int64Counter
	cancels metric.Int64Counter
}

func newBotMetrics() *botMetrics {
	meter := otel.Meter(meterName)
	return &botMetrics{
		dumps:   newCounter(meter, "dumpyarabot.dump.requests", "Dump commands by outcome."),
		cancels: newCounter(meter, "dumpyarabot.cancel.requests", "Cancel commands by outcome."),
	}
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Log.Warn().Err(err).Str("counter", name).Msg("Failed to create counter, using no-op")
		counter, _ = noop.Meter{}.Int64Counter(name)
	}
	return counter
}

func (m *botMetrics) recordDump(ctx context.Context, outcome string, private bool) {
	if m == nil {
		return
	}
	m.dumps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("private", private),
	))
}

func (m *botMetrics) recordCancel(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.cancels.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
