package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "opbridge"

// Metrics holds all relay metric instruments.
type Metrics struct {
	WebhooksReceived    metric.Int64Counter
	WebhooksRejected    metric.Int64Counter
	CommentsPosted      metric.Int64Counter
	NotificationsSent   metric.Int64Counter
	NotificationsFailed metric.Int64Counter
	SummaryRuns         metric.Int64Counter
	TrackerDuration     metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.WebhooksReceived, err = meter.Int64Counter("opbridge.webhooks.received",
		metric.WithDescription("Number of webhook deliveries accepted"))
	if err != nil {
		return nil, err
	}

	m.WebhooksRejected, err = meter.Int64Counter("opbridge.webhooks.rejected",
		metric.WithDescription("Number of webhook deliveries rejected by signature checks"))
	if err != nil {
		return nil, err
	}

	m.CommentsPosted, err = meter.Int64Counter("opbridge.comments.posted",
		metric.WithDescription("Number of tracker comments written"))
	if err != nil {
		return nil, err
	}

	m.NotificationsSent, err = meter.Int64Counter("opbridge.notifications.sent",
		metric.WithDescription("Number of chat notifications delivered"))
	if err != nil {
		return nil, err
	}

	m.NotificationsFailed, err = meter.Int64Counter("opbridge.notifications.failed",
		metric.WithDescription("Number of chat notifications that failed"))
	if err != nil {
		return nil, err
	}

	m.SummaryRuns, err = meter.Int64Counter("opbridge.summary.runs",
		metric.WithDescription("Number of digest generation runs"))
	if err != nil {
		return nil, err
	}

	m.TrackerDuration, err = meter.Float64Histogram("opbridge.tracker.duration_seconds",
		metric.WithDescription("Tracker API call duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
