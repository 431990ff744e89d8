package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opbridge/opbridge/internal/config"
)

// recordingHandler collects slog.Records for test assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSyncCloserIsNop(t *testing.T) {
	log, closer := New(config.Logging{Level: "info", Service: "test"})
	if log == nil {
		t.Fatal("expected a logger")
	}
	closer.Close() // must not panic or block
}

func TestAsyncHandlerDrains(t *testing.T) {
	rec := &recordingHandler{}
	h := NewAsyncHandler(rec, 16, 1)
	log := slog.New(h)

	for range 5 {
		log.Info("hello")
	}
	h.Close()

	if rec.count() != 5 {
		t.Fatalf("expected 5 records after Close, got %d", rec.count())
	}
	if h.DroppedCount() != 0 {
		t.Fatalf("expected no drops, got %d", h.DroppedCount())
	}
}

func TestAsyncHandlerDropsWhenFull(t *testing.T) {
	rec := &recordingHandler{}
	h := &AsyncHandler{ // no workers: the channel fills up
		inner:   rec,
		ch:      make(chan slog.Record, 1),
		wg:      &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	log := slog.New(h)

	log.Info("kept")
	log.Info("dropped")

	if h.DroppedCount() != 1 {
		t.Fatalf("expected 1 drop, got %d", h.DroppedCount())
	}
}

func TestDeliveryIDContext(t *testing.T) {
	ctx := context.Background()
	if DeliveryID(ctx) != "" {
		t.Fatal("expected empty delivery id")
	}
	ctx = WithDeliveryID(ctx, "abc-123")
	if DeliveryID(ctx) != "abc-123" {
		t.Fatalf("got %q", DeliveryID(ctx))
	}
}
