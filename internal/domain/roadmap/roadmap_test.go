package roadmap

import "testing"

func TestProgress(t *testing.T) {
	tests := []struct {
		closed, total, want int
	}{
		{0, 0, 0},
		{3, 10, 30},
		{2, 3, 67}, // round to nearest, not floor
		{1, 3, 33},
		{10, 10, 100},
		{1, 8, 13}, // 12.5 rounds up
	}
	for _, tt := range tests {
		if got := Progress(tt.closed, tt.total); got != tt.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tt.closed, tt.total, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	start := "2026-01-01"
	v := &Version{ID: 4, Name: "v1.2", Status: "open", Sharing: "system", StartDate: &start}
	v.Description.Raw = "Q1 milestone"
	v.Links.DefiningProject.Title = "Platform"

	s := Summarize(v, 10, 3)
	if s.Progress != 30 {
		t.Fatalf("expected 30%%, got %d", s.Progress)
	}
	if s.Project != "Platform" || s.Description != "Q1 milestone" {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.StartDate != "2026-01-01" || s.DueDate != "" {
		t.Fatalf("unexpected dates: %+v", s)
	}
}
