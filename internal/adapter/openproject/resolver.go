package openproject

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// Resolver maps the configured status and type names to their numeric ids.
// Explicit id overrides win; otherwise the id is looked up once against the
// remote instance and cached for the process lifetime. Concurrent first
// lookups may each hit the remote before the cache settles, which is benign.
type Resolver struct {
	client *Client
	cache  *ristretto.Cache[string, int]

	statusID   int
	statusName string
	typeID     int
	typeName   string
}

// NewResolver creates a resolver over the given client. A non-zero id
// override short-circuits the corresponding name lookup entirely.
func NewResolver(client *Client, statusID int, statusName string, typeID int, typeName string) (*Resolver, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, int]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}

	return &Resolver{
		client:     client,
		cache:      cache,
		statusID:   statusID,
		statusName: statusName,
		typeID:     typeID,
		typeName:   typeName,
	}, nil
}

// StatusID resolves the terminal status id. Returns false when the name
// matches nothing remotely, so callers can skip the dependent operation.
func (r *Resolver) StatusID(ctx context.Context) (int, bool) {
	if r.statusID != 0 {
		return r.statusID, true
	}
	return r.lookup(ctx, "status:"+r.statusName, r.statusName, r.client.listStatuses)
}

// TypeID resolves the work-package type id used for roadmap counting.
func (r *Resolver) TypeID(ctx context.Context) (int, bool) {
	if r.typeID != 0 {
		return r.typeID, true
	}
	return r.lookup(ctx, "type:"+r.typeName, r.typeName, r.client.listTypes)
}

func (r *Resolver) lookup(ctx context.Context, key, name string, list func(context.Context) ([]namedRecord, error)) (int, bool) {
	if id, ok := r.cache.Get(key); ok {
		return id, true
	}

	records, err := list(ctx)
	if err != nil {
		slog.Warn("openproject: resolve by name", "name", name, "error", err)
		return 0, false
	}

	for _, rec := range records {
		if strings.EqualFold(rec.Name, name) {
			r.cache.Set(key, rec.ID, 1)
			return rec.ID, true
		}
	}

	slog.Warn("openproject: no record matches configured name", "name", name)
	return 0, false
}
