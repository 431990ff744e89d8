// Package service holds the relay's application logic: webhook routing,
// digest aggregation, reminders, and notification fan-out.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/port/broadcast"
	"github.com/opbridge/opbridge/internal/port/notifier"
)

// Notification families. Summary and reminder channels fall back to the
// general channel at configuration time, so each family maps to exactly one
// notifier here.
const (
	FamilyGeneral  = "general"
	FamilySummary  = "summary"
	FamilyReminder = "reminder"
)

// NotificationService routes outbound messages to the notifier configured
// for each family. Delivery failures are logged and surfaced to metrics but
// never abort the caller's flow.
type NotificationService struct {
	families map[string]notifier.Notifier
	hub      broadcast.Broadcaster
	metrics  *otel.Metrics
}

// NewNotificationService wires the per-family notifiers. Any of hub and
// metrics may be nil.
func NewNotificationService(general, summary, reminder notifier.Notifier, hub broadcast.Broadcaster, metrics *otel.Metrics) *NotificationService {
	return &NotificationService{
		families: map[string]notifier.Notifier{
			FamilyGeneral:  general,
			FamilySummary:  summary,
			FamilyReminder: reminder,
		},
		hub:     hub,
		metrics: metrics,
	}
}

// Notify sends text through the family's notifier. An unknown family falls
// back to general. Returns the delivery error for callers that care, after
// logging it.
func (s *NotificationService) Notify(ctx context.Context, family, text string) error {
	n, ok := s.families[family]
	if !ok || n == nil {
		n = s.families[FamilyGeneral]
	}
	if n == nil {
		slog.Debug("notification dropped, no notifier configured", "family", family)
		return notifier.ErrNotConfigured
	}

	ctx, span := otel.StartNotifySpan(ctx, n.Name())
	defer span.End()

	if err := n.Send(ctx, text); err != nil {
		if errors.Is(err, notifier.ErrNotConfigured) {
			slog.Debug("notification dropped, notifier unconfigured", "family", family)
		} else {
			slog.Error("notification failed", "family", family, "notifier", n.Name(), "error", err)
		}
		if s.metrics != nil {
			s.metrics.NotificationsFailed.Add(ctx, 1)
		}
		return err
	}

	slog.Info("notification sent", "family", family, "notifier", n.Name())
	if s.metrics != nil {
		s.metrics.NotificationsSent.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventNotificationSent, ws.NotificationSentEvent{
			Notifier: n.Name(),
			Text:     text,
		})
	}
	return nil
}
