package service

import (
	"context"
	"sync"

	"github.com/opbridge/opbridge/internal/domain/directory"
	"github.com/opbridge/opbridge/internal/domain/roadmap"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/broadcast"
	"github.com/opbridge/opbridge/internal/port/notifier"
	"github.com/opbridge/opbridge/internal/port/tracker"
)

type postedComment struct {
	ID   string
	Text string
}

type fakeTracker struct {
	mu sync.Mutex

	listFn   func(filters []tracker.Filter) []workpackage.WorkPackage
	countFn  func(filters []tracker.Filter) int
	versions []roadmap.Version
	users    []directory.Principal

	comments   []postedComment
	developed  []string
	commentErr error
}

var _ tracker.Tracker = (*fakeTracker)(nil)

func (f *fakeTracker) ListWorkPackages(_ context.Context, filters []tracker.Filter) []workpackage.WorkPackage {
	if f.listFn == nil {
		return nil
	}
	return f.listFn(filters)
}

func (f *fakeTracker) CountWorkPackages(_ context.Context, filters []tracker.Filter) int {
	if f.countFn == nil {
		return 0
	}
	return f.countFn(filters)
}

func (f *fakeTracker) ListVersions(context.Context) []roadmap.Version {
	return f.versions
}

func (f *fakeTracker) ListUsers(context.Context) []directory.Principal {
	return f.users
}

func (f *fakeTracker) PostComment(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments = append(f.comments, postedComment{ID: id, Text: text})
	return nil
}

func (f *fakeTracker) MarkDeveloped(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.developed = append(f.developed, id)
	return nil
}

type fakeResolver struct {
	statusID, typeID int
	statusOK, typeOK bool
}

var _ tracker.Resolver = (*fakeResolver)(nil)

func (f *fakeResolver) StatusID(context.Context) (int, bool) { return f.statusID, f.statusOK }
func (f *fakeResolver) TypeID(context.Context) (int, bool)   { return f.typeID, f.typeOK }

type fakeNotifier struct {
	name string
	err  error
	sent []string
}

var _ notifier.Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type broadcastRecord struct {
	Type    string
	Payload any
}

type fakeHub struct {
	events []broadcastRecord
}

var _ broadcast.Broadcaster = (*fakeHub)(nil)

func (f *fakeHub) BroadcastEvent(_ context.Context, eventType string, payload any) {
	f.events = append(f.events, broadcastRecord{Type: eventType, Payload: payload})
}
