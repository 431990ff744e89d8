package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "opbridge"

// StartWebhookSpan starts a span for processing one webhook delivery.
func StartWebhookSpan(ctx context.Context, source, eventType, deliveryID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "webhook",
		trace.WithAttributes(
			attribute.String("webhook.source", source),
			attribute.String("webhook.event", eventType),
			attribute.String("webhook.delivery_id", deliveryID),
		),
	)
}

// StartSummarySpan starts a span for a digest generation run.
func StartSummarySpan(ctx context.Context, trigger string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "summary",
		trace.WithAttributes(
			attribute.String("summary.trigger", trigger),
		),
	)
}

// StartNotifySpan starts a span for one chat notification.
func StartNotifySpan(ctx context.Context, notifierName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "notify",
		trace.WithAttributes(
			attribute.String("notify.notifier", notifierName),
		),
	)
}
