package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/domain/directory"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
)

// ReminderService nudges assignees about due-today and overdue work, one
// chat message per item so each assignee sees their own mention.
type ReminderService struct {
	summary       *SummaryService
	notifications *NotificationService
}

// NewReminderService creates the reminder runner over the digest aggregator.
func NewReminderService(summary *SummaryService, notifications *NotificationService) *ReminderService {
	return &ReminderService{summary: summary, notifications: notifications}
}

// Run aggregates and posts one reminder per due-today and overdue item to
// the reminder channel. Unassigned items are skipped.
func (s *ReminderService) Run(ctx context.Context, trigger string) {
	ctx, span := otel.StartSummarySpan(ctx, trigger)
	defer span.End()

	agg := s.summary.Aggregate(ctx)

	sent := 0
	for _, wp := range agg.DueToday {
		if s.remind(ctx, wp, fmt.Sprintf("%s: #%d %s is due today. Please wrap it up before end of day.",
			directory.MentionFor(wp.Assignee), wp.ID, wp.Subject)) {
			sent++
		}
	}
	for _, wp := range agg.Overdue {
		if s.remind(ctx, wp, fmt.Sprintf("%s: #%d %s is overdue (due %s). Please finish it or move the due date.",
			directory.MentionFor(wp.Assignee), wp.ID, wp.Subject, wp.DueDate)) {
			sent++
		}
	}

	slog.Info("reminders run", "trigger", trigger,
		"due_today", len(agg.DueToday), "overdue", len(agg.Overdue), "sent", sent)
}

func (s *ReminderService) remind(ctx context.Context, wp workpackage.Summary, text string) bool {
	if wp.Assignee == "" {
		slog.Debug("skipping reminder for unassigned item", "work_package", wp.ID)
		return false
	}
	return s.notifications.Notify(ctx, FamilyReminder, text) == nil
}
