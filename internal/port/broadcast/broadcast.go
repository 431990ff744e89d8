// Package broadcast defines the port for broadcasting relay events to connected clients.
package broadcast

import "context"

// Broadcaster sends real-time relay events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
