package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/opbridge/opbridge/internal/adapter/otel"
	"github.com/opbridge/opbridge/internal/adapter/ws"
	"github.com/opbridge/opbridge/internal/domain/roadmap"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/broadcast"
	"github.com/opbridge/opbridge/internal/port/tracker"
)

const dateLayout = "2006-01-02"

// maxSubjectLen truncates long subjects in the plain-text digest.
const maxSubjectLen = 80

// Aggregate is one consistent snapshot of the day's work. The three
// work-package sections are pairwise disjoint by id, in precedence order:
// due today, then overdue, then in progress.
type Aggregate struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	DueToday    []workpackage.Summary `json:"dueToday"`
	Overdue     []workpackage.Summary `json:"overdue"`
	InProgress  []workpackage.Summary `json:"inProgress"`
	Roadmaps    []roadmap.Summary     `json:"roadmaps"`
}

// SummaryService builds the daily digest from tracker data and sends it to
// chat on schedule or on demand.
type SummaryService struct {
	tracker       tracker.Tracker
	resolver      tracker.Resolver
	notifications *NotificationService
	trackerURL    string
	threshold     int
	hub           broadcast.Broadcaster
	metrics       *otel.Metrics

	now func() time.Time
}

// NewSummaryService creates the digest aggregator. trackerURL is used for
// links in the HTML view; hub and metrics may be nil.
func NewSummaryService(t tracker.Tracker, r tracker.Resolver, n *NotificationService, trackerURL string, threshold int, hub broadcast.Broadcaster, metrics *otel.Metrics) *SummaryService {
	return &SummaryService{
		tracker:       t,
		resolver:      r,
		notifications: n,
		trackerURL:    strings.TrimRight(trackerURL, "/"),
		threshold:     threshold,
		hub:           hub,
		metrics:       metrics,
		now:           time.Now,
	}
}

// Aggregate fetches the day's work packages and roadmap state. Listing
// failures degrade to empty sections rather than failing the digest.
func (s *SummaryService) Aggregate(ctx context.Context) *Aggregate {
	today := s.now().Format(dateLayout)
	typeFilter := s.typeFilter(ctx)

	var dueToday, overdue, open []workpackage.WorkPackage
	var versions []roadmap.Version

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dueToday = s.tracker.ListWorkPackages(gctx, append([]tracker.Filter{
			{Name: "status", Operator: "o"},
			{Name: "dueDate", Operator: "=d", Values: []string{today}},
		}, typeFilter...))
		return nil
	})
	g.Go(func() error {
		overdue = s.tracker.ListWorkPackages(gctx, append([]tracker.Filter{
			{Name: "status", Operator: "o"},
			{Name: "dueDate", Operator: "<d", Values: []string{today}},
		}, typeFilter...))
		return nil
	})
	g.Go(func() error {
		open = s.tracker.ListWorkPackages(gctx, append([]tracker.Filter{
			{Name: "status", Operator: "o"},
		}, typeFilter...))
		return nil
	})
	g.Go(func() error {
		versions = s.tracker.ListVersions(gctx)
		return nil
	})
	_ = g.Wait()

	agg := &Aggregate{GeneratedAt: s.now()}
	seen := make(map[int]struct{})

	for i := range dueToday {
		wp := &dueToday[i]
		if !workpackage.IsOpen(wp, s.threshold) {
			continue
		}
		seen[wp.ID] = struct{}{}
		agg.DueToday = append(agg.DueToday, workpackage.Summarize(wp))
	}
	for i := range overdue {
		wp := &overdue[i]
		if _, dup := seen[wp.ID]; dup || !workpackage.IsOpen(wp, s.threshold) {
			continue
		}
		seen[wp.ID] = struct{}{}
		agg.Overdue = append(agg.Overdue, workpackage.Summarize(wp))
	}
	for i := range open {
		wp := &open[i]
		if _, dup := seen[wp.ID]; dup || !workpackage.IsOpen(wp, s.threshold) {
			continue
		}
		sum := workpackage.Summarize(wp)
		if !strings.EqualFold(sum.Status, "in progress") {
			continue
		}
		seen[wp.ID] = struct{}{}
		agg.InProgress = append(agg.InProgress, sum)
	}

	for i := range versions {
		agg.Roadmaps = append(agg.Roadmaps, s.summarizeVersion(ctx, &versions[i], typeFilter))
	}

	if s.metrics != nil {
		s.metrics.SummaryRuns.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventSummaryGenerated, ws.SummaryGeneratedEvent{
			DueToday:   len(agg.DueToday),
			Overdue:    len(agg.Overdue),
			InProgress: len(agg.InProgress),
			Roadmaps:   len(agg.Roadmaps),
		})
	}
	return agg
}

// Roadmaps returns completion summaries for all versions.
func (s *SummaryService) Roadmaps(ctx context.Context) []roadmap.Summary {
	typeFilter := s.typeFilter(ctx)

	var out []roadmap.Summary
	for _, v := range s.tracker.ListVersions(ctx) {
		out = append(out, s.summarizeVersion(ctx, &v, typeFilter))
	}
	return out
}

// RunDaily aggregates and posts the plain-text digest to the summary
// channel. Used by the scheduler and the manual trigger endpoint.
func (s *SummaryService) RunDaily(ctx context.Context, trigger string) *Aggregate {
	ctx, span := otel.StartSummarySpan(ctx, trigger)
	defer span.End()

	agg := s.Aggregate(ctx)
	_ = s.notifications.Notify(ctx, FamilySummary, s.Text(agg))
	return agg
}

func (s *SummaryService) typeFilter(ctx context.Context) []tracker.Filter {
	if s.resolver == nil {
		return nil
	}
	id, ok := s.resolver.TypeID(ctx)
	if !ok {
		return nil
	}
	return []tracker.Filter{{Name: "type", Operator: "=", Values: []string{strconv.Itoa(id)}}}
}

func (s *SummaryService) summarizeVersion(ctx context.Context, v *roadmap.Version, typeFilter []tracker.Filter) roadmap.Summary {
	versionFilter := tracker.Filter{Name: "version", Operator: "=", Values: []string{strconv.Itoa(v.ID)}}

	total := s.tracker.CountWorkPackages(ctx, append([]tracker.Filter{versionFilter}, typeFilter...))
	closed := s.tracker.CountWorkPackages(ctx, append([]tracker.Filter{
		versionFilter,
		{Name: "status", Operator: "c"},
	}, typeFilter...))

	return roadmap.Summarize(v, total, closed)
}

// Text renders the plain-text chat digest.
func (s *SummaryService) Text(agg *Aggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily summary for %s\n", agg.GeneratedAt.Format(dateLayout))

	writeSection(&b, "Due today", agg.DueToday)
	writeSection(&b, "Overdue", agg.Overdue)
	writeSection(&b, "In progress", agg.InProgress)

	if len(agg.Roadmaps) > 0 {
		b.WriteString("\nRoadmaps:\n")
		for _, r := range agg.Roadmaps {
			fmt.Fprintf(&b, "- %s: %d%% (%d/%d closed)\n", r.Name, r.Progress, r.Closed, r.Total)
		}
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []workpackage.Summary) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		line := fmt.Sprintf("- #%d %s", it.ID, truncate(it.Subject, maxSubjectLen))
		if it.Assignee != "" {
			line += " (" + it.Assignee + ")"
		}
		b.WriteString(line + "\n")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
