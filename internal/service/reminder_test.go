package service

import (
	"context"
	"strings"
	"testing"

	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/tracker"
)

func newReminderService(tr *fakeTracker) (*ReminderService, *fakeNotifier) {
	reminderCh := &fakeNotifier{name: "reminder"}
	notifications := NewNotificationService(nil, nil, reminderCh, nil, nil)
	summary := NewSummaryService(tr, nil, notifications, "https://op.example.test", 8, nil, nil)
	return NewReminderService(summary, notifications), reminderCh
}

func TestRemindersMentionAssignees(t *testing.T) {
	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			switch {
			case hasFilter(filters, "dueDate", "=d"):
				return []workpackage.WorkPackage{
					makeWP(1, "finish the report", "In progress", "Ada Lovelace", "2026-08-30"),
				}
			case hasFilter(filters, "dueDate", "<d"):
				return []workpackage.WorkPackage{
					makeWP(2, "forgotten task", "New", "Unknown Person", "2026-08-01"),
				}
			default:
				return nil
			}
		},
	}

	s, reminderCh := newReminderService(tr)
	s.Run(context.Background(), "manual")

	if len(reminderCh.sent) != 2 {
		t.Fatalf("got %d reminders, want 2: %v", len(reminderCh.sent), reminderCh.sent)
	}

	due := reminderCh.sent[0]
	if !strings.HasPrefix(due, "@ada:") {
		t.Errorf("due reminder should mention @ada, got %q", due)
	}
	if !strings.Contains(due, "due today") {
		t.Errorf("due reminder wording = %q", due)
	}

	late := reminderCh.sent[1]
	if !strings.HasPrefix(late, "Unknown Person:") {
		t.Errorf("unmatched assignee should fall back to the raw name, got %q", late)
	}
	if !strings.Contains(late, "overdue") || strings.Contains(late, "due today") {
		t.Errorf("overdue reminder wording = %q", late)
	}
}

func TestRemindersSkipUnassigned(t *testing.T) {
	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			if hasFilter(filters, "dueDate", "=d") {
				return []workpackage.WorkPackage{
					makeWP(1, "orphan item", "New", "", "2026-08-30"),
				}
			}
			return nil
		},
	}

	s, reminderCh := newReminderService(tr)
	s.Run(context.Background(), "scheduled")

	if len(reminderCh.sent) != 0 {
		t.Errorf("unassigned items should not produce reminders, got %v", reminderCh.sent)
	}
}
