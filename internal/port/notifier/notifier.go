// Package notifier defines the notification port and its factory registry.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier has no destination configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notifier is the port interface for delivering text messages to a chat
// destination. Implementations own any payload-size chunking.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "chat").
	Name() string

	// Send delivers a text message, splitting it when the destination caps
	// payload size.
	Send(ctx context.Context, text string) error
}
