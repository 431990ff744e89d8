// Package tracker defines the port to the work-tracking system.
package tracker

import (
	"context"

	"github.com/opbridge/opbridge/internal/domain/directory"
	"github.com/opbridge/opbridge/internal/domain/roadmap"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
)

// Filter is one work-package filter clause in the tracker's query language.
type Filter struct {
	Name     string
	Operator string
	Values   []string
}

// Tracker is the port interface for the work-tracking system.
//
// Listing operations degrade on failure: transport and parse errors are
// logged by the implementation and surface as empty results, so callers
// cannot distinguish "no data" from "confirmed empty". Write operations
// return an error for logging and metrics, but callers never propagate it
// past the request.
type Tracker interface {
	// ListWorkPackages returns work packages matching all filter clauses.
	ListWorkPackages(ctx context.Context, filters []Filter) []workpackage.WorkPackage

	// CountWorkPackages returns the remote-reported total for the filters,
	// 0 on failure.
	CountWorkPackages(ctx context.Context, filters []Filter) int

	// ListVersions returns all project versions.
	ListVersions(ctx context.Context) []roadmap.Version

	// ListUsers returns user-typed principals only.
	ListUsers(ctx context.Context) []directory.Principal

	// PostComment adds a comment to a work package.
	PostComment(ctx context.Context, id, text string) error

	// MarkDeveloped moves a work package to the configured terminal status.
	// Aborts silently (nil) when the work package cannot be fetched or the
	// status id cannot be resolved.
	MarkDeveloped(ctx context.Context, id string) error
}

// Resolver resolves tracker entity ids by display name. Implementations hold
// their own cache and are constructed once at startup.
type Resolver interface {
	// StatusID returns the id of the configured terminal status, false when
	// it cannot be resolved.
	StatusID(ctx context.Context) (int, bool)

	// TypeID returns the id of the configured task type, false when it
	// cannot be resolved.
	TypeID(ctx context.Context) (int, bool)
}
