package service

import (
	"context"
	"strings"
	"testing"
)

func newPMService(threshold int) (*PMWebhookService, *fakeNotifier) {
	general := &fakeNotifier{name: "general"}
	notifications := NewNotificationService(general, nil, nil, nil, nil)
	return NewPMWebhookService(notifications, threshold, nil, nil), general
}

func TestPMUpdatedPastThresholdNotifies(t *testing.T) {
	s, general := newPMService(8)

	payload := []byte(`{
		"action": "work_package:updated",
		"work_package": {
			"id": 42,
			"subject": "Fix the parser",
			"_embedded": {"status": {"id": 9, "name": "Developed"}}
		}
	}`)
	if err := s.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(general.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(general.sent))
	}
	if got := general.sent[0]; !strings.Contains(got, "#42") || !strings.Contains(got, "moved to Developed") {
		t.Errorf("notification = %q", got)
	}
}

func TestPMUpdatedAtThresholdSilent(t *testing.T) {
	s, general := newPMService(8)

	payload := []byte(`{
		"action": "work_package:updated",
		"work_package": {"id": 42, "subject": "x", "_embedded": {"status": {"id": 8, "name": "In review"}}}
	}`)
	if err := s.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(general.sent) != 0 {
		t.Errorf("status id equal to threshold must stay silent, got %v", general.sent)
	}
}

func TestPMUpdatedWithoutStatusSilent(t *testing.T) {
	s, general := newPMService(8)

	payload := []byte(`{"action":"work_package:updated","work_package":{"id":42,"subject":"x"}}`)
	if err := s.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(general.sent) != 0 {
		t.Errorf("missing status must stay silent, got %v", general.sent)
	}
}

func TestPMCreatedAlwaysNotifies(t *testing.T) {
	s, general := newPMService(8)

	payload := []byte(`{
		"action": "work_package:created",
		"work_package": {"id": 7, "subject": "New task", "_embedded": {"status": {"id": 1, "name": "New"}}}
	}`)
	if err := s.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(general.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(general.sent))
	}
	if got := general.sent[0]; !strings.Contains(got, "#7") || !strings.Contains(got, "created") {
		t.Errorf("notification = %q", got)
	}
}

func TestPMOtherActionIgnored(t *testing.T) {
	s, general := newPMService(8)

	if err := s.HandleEvent(context.Background(), []byte(`{"action":"time_entry:created"}`)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(general.sent) != 0 {
		t.Errorf("unrelated actions must stay silent, got %v", general.sent)
	}
}

func TestPMMalformedPayload(t *testing.T) {
	s, _ := newPMService(8)

	if err := s.HandleEvent(context.Background(), []byte("{not json")); err == nil {
		t.Error("HandleEvent() should fail on malformed payload")
	}
}
