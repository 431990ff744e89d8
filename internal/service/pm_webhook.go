package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/broadcast"
)

// PMWebhookService handles OpenProject's own outbound webhook. Status moves
// past the visible-status threshold and newly created work packages produce
// chat notifications; everything else is acknowledged silently.
type PMWebhookService struct {
	notifications *NotificationService
	threshold     int
	hub           broadcast.Broadcaster
	metrics       *otel.Metrics
}

// NewPMWebhookService creates the OpenProject event handler. Status ids at
// or below threshold are considered part of the normal visible flow and not
// announced.
func NewPMWebhookService(n *NotificationService, threshold int, hub broadcast.Broadcaster, metrics *otel.Metrics) *PMWebhookService {
	return &PMWebhookService{notifications: n, threshold: threshold, hub: hub, metrics: metrics}
}

// HandleEvent processes one delivery. Returns an error only for malformed
// payloads.
func (s *PMWebhookService) HandleEvent(ctx context.Context, payload []byte) error {
	ctx, span := otel.StartWebhookSpan(ctx, "openproject", "", "")
	defer span.End()

	var raw struct {
		Action      string                  `json:"action"`
		WorkPackage workpackage.WorkPackage `json:"work_package"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("parse openproject webhook: %w", err)
	}

	if s.metrics != nil {
		s.metrics.WebhooksReceived.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventWebhookReceived, ws.WebhookReceivedEvent{
			Source:    "openproject",
			EventType: raw.Action,
		})
	}

	wp := raw.WorkPackage
	switch raw.Action {
	case "work_package:updated":
		status := wp.Embedded.Status
		if status == nil || status.ID <= s.threshold {
			return nil
		}
		text := fmt.Sprintf("#%d %s moved to %s", wp.ID, wp.Subject, status.Name)
		_ = s.notifications.Notify(ctx, FamilyGeneral, text)
	case "work_package:created":
		text := fmt.Sprintf("#%d %s created", wp.ID, wp.Subject)
		_ = s.notifications.Notify(ctx, FamilyGeneral, text)
	default:
		slog.Debug("ignoring openproject action", "action", raw.Action)
	}
	return nil
}
