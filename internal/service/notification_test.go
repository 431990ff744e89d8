package service

import (
	"context"
	"errors"
	"testing"

	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/port/notifier"
)

func TestNotifyRoutesByFamily(t *testing.T) {
	general := &fakeNotifier{name: "general"}
	summary := &fakeNotifier{name: "summary"}
	reminder := &fakeNotifier{name: "reminder"}
	hub := &fakeHub{}

	s := NewNotificationService(general, summary, reminder, hub, nil)

	if err := s.Notify(context.Background(), FamilySummary, "digest"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := s.Notify(context.Background(), FamilyReminder, "nudge"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := s.Notify(context.Background(), FamilyGeneral, "news"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if len(summary.sent) != 1 || summary.sent[0] != "digest" {
		t.Errorf("summary channel got %v", summary.sent)
	}
	if len(reminder.sent) != 1 || reminder.sent[0] != "nudge" {
		t.Errorf("reminder channel got %v", reminder.sent)
	}
	if len(general.sent) != 1 || general.sent[0] != "news" {
		t.Errorf("general channel got %v", general.sent)
	}
	if len(hub.events) != 3 {
		t.Errorf("hub saw %d events, want 3", len(hub.events))
	}
	if hub.events[0].Type != ws.EventNotificationSent {
		t.Errorf("event type = %q", hub.events[0].Type)
	}
}

func TestNotifyUnknownFamilyFallsBackToGeneral(t *testing.T) {
	general := &fakeNotifier{name: "general"}
	s := NewNotificationService(general, nil, nil, nil, nil)

	if err := s.Notify(context.Background(), "mystery", "hello"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := s.Notify(context.Background(), FamilySummary, "digest"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(general.sent) != 2 {
		t.Errorf("general channel got %v, want both messages", general.sent)
	}
}

func TestNotifyDeliveryFailure(t *testing.T) {
	failing := &fakeNotifier{name: "general", err: errors.New("chat down")}
	hub := &fakeHub{}
	s := NewNotificationService(failing, nil, nil, hub, nil)

	if err := s.Notify(context.Background(), FamilyGeneral, "hello"); err == nil {
		t.Error("Notify() should return the delivery error")
	}
	if len(hub.events) != 0 {
		t.Errorf("failed delivery should not broadcast, got %d events", len(hub.events))
	}
}

func TestNotifyNothingConfigured(t *testing.T) {
	s := NewNotificationService(nil, nil, nil, nil, nil)

	err := s.Notify(context.Background(), FamilyGeneral, "hello")
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Errorf("Notify() error = %v, want ErrNotConfigured", err)
	}
}
