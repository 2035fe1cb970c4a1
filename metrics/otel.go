package metrics

import (
	"context"
	"time"

	"github.com/poiesic/concierge/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope used by NewOTel.
const MeterName = "github.com/poiesic/concierge"

// OTel reports dispatch events as OpenTelemetry instruments.
type OTel struct {
	requests  metric.Int64Counter
	errors    metric.Int64Counter
	durations metric.Float64Histogram
}

var _ Sink = (*OTel)(nil)

// NewOTel creates the instruments on meter. A nil meter uses the global
// meter provider.
func NewOTel(meter metric.Meter) (*OTel, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	o := &OTel{}
	var err error

	o.requests, err = meter.Int64Counter(
		"concierge.requests.total",
		metric.WithDescription("Total number of handled questions"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	o.errors, err = meter.Int64Counter(
		"concierge.responder.errors.total",
		metric.WithDescription("Total number of responder failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	o.durations, err = meter.Float64Histogram(
		"concierge.request.duration",
		metric.WithDescription("Question handling duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (o *OTel) RequestCompleted(ctx context.Context, winner core.ResponderKind, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("responder", string(winner)),
		attribute.Bool("fallback", winner == core.KindFallback),
	)
	o.requests.Add(ctx, 1, attrs)
	o.durations.Record(ctx, elapsed.Seconds(), attrs)
}

func (o *OTel) ResponderFailed(ctx context.Context, kind core.ResponderKind, _ error) {
	o.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("responder", string(kind))))
}
