package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/opbridge/opbridge/internal/domain/roadmap"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/tracker"
)

func makeWP(id int, subject, status, assignee, dueDate string) workpackage.WorkPackage {
	var wp workpackage.WorkPackage
	wp.ID = id
	wp.Subject = subject
	wp.Embedded.Status = &workpackage.EmbeddedStatus{ID: 1, Name: status}
	wp.Links.Assignee.Title = assignee
	if dueDate != "" {
		wp.DueDate = &dueDate
	}
	return wp
}

func hasFilter(filters []tracker.Filter, name, operator string) bool {
	for _, f := range filters {
		if f.Name == name && f.Operator == operator {
			return true
		}
	}
	return false
}

func newSummaryService(tr *fakeTracker, r tracker.Resolver) (*SummaryService, *fakeNotifier) {
	summaryCh := &fakeNotifier{name: "summary"}
	notifications := NewNotificationService(nil, summaryCh, nil, nil, nil)
	s := NewSummaryService(tr, r, notifications, "https://op.example.test/", 8, nil, nil)
	s.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	return s, summaryCh
}

func TestAggregateDisjointSections(t *testing.T) {
	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			switch {
			case hasFilter(filters, "dueDate", "=d"):
				return []workpackage.WorkPackage{
					makeWP(1, "due item", "In progress", "Ada Lovelace", "2026-08-30"),
				}
			case hasFilter(filters, "dueDate", "<d"):
				return []workpackage.WorkPackage{
					makeWP(1, "due item", "In progress", "Ada Lovelace", "2026-08-30"), // dup of due-today
					makeWP(2, "late item", "New", "Grace Hopper", "2026-08-01"),
				}
			default:
				return []workpackage.WorkPackage{
					makeWP(1, "due item", "In progress", "Ada Lovelace", "2026-08-30"),
					makeWP(2, "late item", "In progress", "Grace Hopper", "2026-08-01"),
					makeWP(3, "active item", "In Progress", "", ""),
					makeWP(4, "queued item", "New", "", ""),
				}
			}
		},
	}

	s, _ := newSummaryService(tr, nil)
	agg := s.Aggregate(context.Background())

	if len(agg.DueToday) != 1 || agg.DueToday[0].ID != 1 {
		t.Errorf("DueToday = %+v", agg.DueToday)
	}
	if len(agg.Overdue) != 1 || agg.Overdue[0].ID != 2 {
		t.Errorf("Overdue = %+v, want only id 2", agg.Overdue)
	}
	if len(agg.InProgress) != 1 || agg.InProgress[0].ID != 3 {
		t.Errorf("InProgress = %+v, want only id 3 (case-insensitive status, earlier sets excluded)", agg.InProgress)
	}
}

func TestAggregateFiltersClosedRecords(t *testing.T) {
	closed := true
	wp := makeWP(9, "stale listing", "Closed", "", "2026-08-30")
	wp.Embedded.Status.IsClosed = &closed

	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			if hasFilter(filters, "dueDate", "=d") {
				return []workpackage.WorkPackage{wp}
			}
			return nil
		},
	}

	s, _ := newSummaryService(tr, nil)
	agg := s.Aggregate(context.Background())

	if len(agg.DueToday) != 0 {
		t.Errorf("closed record leaked into DueToday: %+v", agg.DueToday)
	}
}

func TestAggregateAppliesTypeFilter(t *testing.T) {
	var sawType bool
	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			for _, f := range filters {
				if f.Name == "type" && f.Operator == "=" && len(f.Values) == 1 && f.Values[0] == "3" {
					sawType = true
				}
			}
			return nil
		},
	}

	s, _ := newSummaryService(tr, &fakeResolver{typeID: 3, typeOK: true})
	s.Aggregate(context.Background())

	if !sawType {
		t.Error("listings should carry the resolved type filter")
	}
}

func TestRoadmapCounts(t *testing.T) {
	v := roadmap.Version{ID: 5, Name: "v1.0"}
	tr := &fakeTracker{
		versions: []roadmap.Version{v},
		countFn: func(filters []tracker.Filter) int {
			if !hasFilter(filters, "version", "=") {
				t.Errorf("count without version filter: %+v", filters)
			}
			if hasFilter(filters, "status", "c") {
				return 3
			}
			return 10
		},
	}

	s, _ := newSummaryService(tr, nil)
	roadmaps := s.Roadmaps(context.Background())

	if len(roadmaps) != 1 {
		t.Fatalf("got %d roadmaps, want 1", len(roadmaps))
	}
	r := roadmaps[0]
	if r.Total != 10 || r.Closed != 3 || r.Progress != 30 {
		t.Errorf("roadmap = %+v, want 3/10 = 30%%", r)
	}
}

func TestTextDigest(t *testing.T) {
	agg := &Aggregate{
		GeneratedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		DueToday: []workpackage.Summary{
			{ID: 1, Subject: "due item", Assignee: "Ada Lovelace"},
		},
		Overdue: []workpackage.Summary{
			{ID: 2, Subject: strings.Repeat("x", 120)},
		},
		Roadmaps: []roadmap.Summary{
			{Name: "v1.0", Total: 10, Closed: 3, Progress: 30},
		},
	}

	s, _ := newSummaryService(&fakeTracker{}, nil)
	text := s.Text(agg)

	for _, want := range []string{
		"Daily summary for 2026-08-30",
		"Due today:",
		"- #1 due item (Ada Lovelace)",
		"Overdue:",
		"- v1.0: 30% (3/10 closed)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "In progress:") {
		t.Error("empty sections should be omitted")
	}
	if strings.Contains(text, strings.Repeat("x", 120)) {
		t.Error("long subjects should be truncated")
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("日", 40) // 120 bytes, 40 runes

	got := truncate(long, maxSubjectLen)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated subject is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated subject should end with ellipsis, got %q", got)
	}
	if short := truncate("short", maxSubjectLen); short != "short" {
		t.Errorf("short subjects must pass through, got %q", short)
	}
}

func TestRenderHTML(t *testing.T) {
	agg := &Aggregate{
		GeneratedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		DueToday: []workpackage.Summary{
			{ID: 1, Subject: "due <item>", Status: "In progress", DueDate: "2026-08-30"},
		},
		Roadmaps: []roadmap.Summary{
			{Name: "v1.0", Total: 10, Closed: 3, Progress: 30},
		},
	}

	s, _ := newSummaryService(&fakeTracker{}, nil)
	var buf strings.Builder
	if err := s.RenderHTML(&buf, agg); err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		`id="wp-1"`,
		`href="https://op.example.test/work_packages/1"`,
		"due &lt;item&gt;",
		"3/10 (30%)",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRunDailyPostsDigest(t *testing.T) {
	tr := &fakeTracker{
		listFn: func(filters []tracker.Filter) []workpackage.WorkPackage {
			if hasFilter(filters, "dueDate", "=d") {
				return []workpackage.WorkPackage{makeWP(1, "due item", "New", "", "2026-08-30")}
			}
			return nil
		},
	}

	s, summaryCh := newSummaryService(tr, nil)
	s.RunDaily(context.Background(), "manual")

	if len(summaryCh.sent) != 1 {
		t.Fatalf("got %d digest posts, want 1", len(summaryCh.sent))
	}
	if !strings.Contains(summaryCh.sent[0], "#1 due item") {
		t.Errorf("digest = %q", summaryCh.sent[0])
	}
}
