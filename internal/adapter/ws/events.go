package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventWebhookReceived  = "webhook.received"
	EventCommentPosted    = "comment.posted"
	EventNotificationSent = "notification.sent"
	EventSummaryGenerated = "summary.generated"
)

// WebhookReceivedEvent is broadcast when a webhook delivery is accepted.
type WebhookReceivedEvent struct {
	Source     string `json:"source"`
	EventType  string `json:"event_type"`
	DeliveryID string `json:"delivery_id"`
}

// CommentPostedEvent is broadcast when a tracker comment is written.
type CommentPostedEvent struct {
	WorkPackageID string `json:"work_package_id"`
	Text          string `json:"text"`
}

// NotificationSentEvent is broadcast when a chat notification goes out.
type NotificationSentEvent struct {
	Notifier string `json:"notifier"`
	Text     string `json:"text"`
}

// SummaryGeneratedEvent is broadcast after a digest run completes.
type SummaryGeneratedEvent struct {
	DueToday   int `json:"due_today"`
	Overdue    int `json:"overdue"`
	InProgress int `json:"in_progress"`
	Roadmaps   int `json:"roadmaps"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
