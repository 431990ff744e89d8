// Package scheduler fires jobs at fixed wall-clock times of day.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Job is a scheduled callback. The context is the scheduler's run context.
type Job func(ctx context.Context)

// TimeOfDay is a local wall-clock trigger time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first occurrence of t strictly after now, today or
// tomorrow, in now's location.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, t.Hour, t.Minute, 0, 0, now.Location())
	}
	return next
}

// ParseTimes parses a comma or whitespace separated list of HH:MM entries.
// Malformed entries are logged and skipped rather than failing the list.
func ParseTimes(spec string) []TimeOfDay {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	var times []TimeOfDay
	for _, f := range fields {
		t, err := parseTime(f)
		if err != nil {
			slog.Warn("scheduler: skipping invalid time entry", "entry", f, "error", err)
			continue
		}
		times = append(times, t)
	}
	return times
}

func parseTime(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%q is not HH:MM", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("hour %q out of range", hh)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("minute %q out of range", mm)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

type entry struct {
	name string
	at   TimeOfDay
	job  Job
}

// Scheduler runs each registered entry in its own goroutine, arming a
// one-shot timer for the next occurrence and re-arming after every fire.
// Drift from DST transitions is absorbed because each occurrence is computed
// against the current clock, not a fixed interval.
type Scheduler struct {
	logger  *slog.Logger
	entries []entry
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// New creates an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.With("component", "scheduler"),
		now:    time.Now,
	}
}

// Add registers a job for every time in the list. Must be called before Start.
func (s *Scheduler) Add(name string, times []TimeOfDay, job Job) {
	for _, at := range times {
		s.entries = append(s.entries, entry{name: name, at: at, job: job})
	}
}

// Start launches the entry loops. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.run(ctx, e)
	}

	s.logger.Info("scheduler started", "entries", len(s.entries))
}

// Stop cancels all entry loops and waits for them to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, e entry) {
	defer s.wg.Done()

	for {
		next := e.at.Next(s.now())
		timer := time.NewTimer(next.Sub(s.now()))

		s.logger.Debug("scheduler armed", "job", e.name, "at", e.at.String(), "next", next)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.logger.Info("scheduler firing", "job", e.name, "at", e.at.String())
			e.job(ctx)
		}
	}
}
