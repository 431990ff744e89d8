// Package openproject implements the tracker port against the OpenProject v3
// API.
package openproject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opbridge/opbridge/internal/domain"
	"github.com/opbridge/opbridge/internal/domain/directory"
	"github.com/opbridge/opbridge/internal/domain/roadmap"
	"github.com/opbridge/opbridge/internal/domain/workpackage"
	"github.com/opbridge/opbridge/internal/port/tracker"
	"github.com/opbridge/opbridge/internal/resilience"
)

// basicAuthUser is the fixed username OpenProject expects for API-key auth.
const basicAuthUser = "apikey"

// pageSize is the fixed page size for work-package listings.
const pageSize = 500

// Client talks to the OpenProject v3 REST API. Listing operations degrade to
// empty results on any failure; the failure is logged at the call site and
// never propagates, so "no data" and "confirmed empty" are indistinguishable
// to callers (accepted limitation).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
	resolver   tracker.Resolver
}

// NewClient creates an OpenProject client. A zero timeout disables the
// request deadline.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetResolver attaches the status/type resolver used by MarkDeveloped.
func (c *Client) SetResolver(r tracker.Resolver) {
	c.resolver = r
}

// collection is the generic OpenProject listing envelope.
type collection[T any] struct {
	Total    int `json:"total"`
	Embedded struct {
		Elements []T `json:"elements"`
	} `json:"_embedded"`
}

// ListWorkPackages returns work packages matching the filters, at most
// pageSize of them. Empty on any failure.
func (c *Client) ListWorkPackages(ctx context.Context, filters []tracker.Filter) []workpackage.WorkPackage {
	q := url.Values{
		"filters":  {encodeFilters(filters)},
		"pageSize": {strconv.Itoa(pageSize)},
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/api/v3/work_packages", q, nil)
	if err != nil {
		slog.Error("openproject: list work packages", "error", err)
		return nil
	}

	var col collection[workpackage.WorkPackage]
	if err := json.Unmarshal(data, &col); err != nil {
		slog.Error("openproject: parse work packages", "error", err)
		return nil
	}
	return col.Embedded.Elements
}

// CountWorkPackages returns the remote-reported total for the filters,
// 0 on failure.
func (c *Client) CountWorkPackages(ctx context.Context, filters []tracker.Filter) int {
	q := url.Values{
		"filters":  {encodeFilters(filters)},
		"pageSize": {"1"},
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/api/v3/work_packages", q, nil)
	if err != nil {
		slog.Error("openproject: count work packages", "error", err)
		return 0
	}

	var col collection[json.RawMessage]
	if err := json.Unmarshal(data, &col); err != nil {
		slog.Error("openproject: parse count", "error", err)
		return 0
	}
	return col.Total
}

// ListVersions returns all project versions. Empty on any failure.
func (c *Client) ListVersions(ctx context.Context) []roadmap.Version {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v3/versions", nil, nil)
	if err != nil {
		slog.Error("openproject: list versions", "error", err)
		return nil
	}

	var col collection[roadmap.Version]
	if err := json.Unmarshal(data, &col); err != nil {
		slog.Error("openproject: parse versions", "error", err)
		return nil
	}
	return col.Embedded.Elements
}

// ListUsers returns user-typed principals only; groups and placeholder
// accounts are filtered out.
func (c *Client) ListUsers(ctx context.Context) []directory.Principal {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v3/principals", nil, nil)
	if err != nil {
		slog.Error("openproject: list principals", "error", err)
		return nil
	}

	var col collection[directory.Principal]
	if err := json.Unmarshal(data, &col); err != nil {
		slog.Error("openproject: parse principals", "error", err)
		return nil
	}

	users := col.Embedded.Elements[:0]
	for _, p := range col.Embedded.Elements {
		if p.Type == "User" {
			users = append(users, p)
		}
	}
	return users
}

// PostComment adds a comment to the work package's activities.
func (c *Client) PostComment(ctx context.Context, id, text string) error {
	body, err := json.Marshal(map[string]any{
		"comment": map[string]string{"raw": text},
	})
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	path := "/api/v3/work_packages/" + url.PathEscape(id) + "/activities"
	if _, err := c.doRequest(ctx, http.MethodPost, path, nil, body); err != nil {
		slog.Error("openproject: post comment", "work_package", id, "error", err)
		return err
	}

	slog.Info("openproject: comment posted", "work_package", id)
	return nil
}

// MarkDeveloped moves a work package to the configured terminal status using
// a read-modify-write on the record's lockVersion. Aborts silently when the
// fetch fails or the status id cannot be resolved; a version conflict is not
// retried.
func (c *Client) MarkDeveloped(ctx context.Context, id string) error {
	path := "/api/v3/work_packages/" + url.PathEscape(id)

	data, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		slog.Error("openproject: fetch work package", "work_package", id, "error", err)
		return nil
	}

	var wp workpackage.WorkPackage
	if err := json.Unmarshal(data, &wp); err != nil {
		slog.Error("openproject: parse work package", "work_package", id, "error", err)
		return nil
	}

	if c.resolver == nil {
		slog.Warn("openproject: no resolver attached, skipping status update", "work_package", id)
		return nil
	}
	statusID, ok := c.resolver.StatusID(ctx)
	if !ok {
		return nil
	}

	patch, err := json.Marshal(map[string]any{
		"lockVersion": wp.LockVersion,
		"_links": map[string]any{
			"status": map[string]string{
				"href": "/api/v3/statuses/" + strconv.Itoa(statusID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal status patch: %w", err)
	}

	if _, err := c.doRequest(ctx, http.MethodPatch, path, nil, patch); err != nil {
		slog.Error("openproject: patch status", "work_package", id, "status_id", statusID, "error", err)
		return err
	}

	slog.Info("openproject: status updated", "work_package", id, "status_id", statusID)
	return nil
}

// listStatuses returns the instance's status records.
func (c *Client) listStatuses(ctx context.Context) ([]namedRecord, error) {
	return c.listNamed(ctx, "/api/v3/statuses")
}

// listTypes returns the instance's work-package types.
func (c *Client) listTypes(ctx context.Context) ([]namedRecord, error) {
	return c.listNamed(ctx, "/api/v3/types")
}

type namedRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c *Client) listNamed(ctx context.Context, path string) ([]namedRecord, error) {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var col collection[namedRecord]
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return col.Embedded.Elements, nil
}

// encodeFilters renders filter clauses in the v3 API's JSON array form:
// [{"dueDate":{"operator":"=d","values":["2026-08-30"]}}].
func encodeFilters(filters []tracker.Filter) string {
	clauses := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		values := f.Values
		if values == nil {
			values = []string{}
		}
		clauses = append(clauses, map[string]any{
			f.Name: map[string]any{
				"operator": f.Operator,
				"values":   values,
			},
		})
	}

	data, _ := json.Marshal(clauses)
	return string(data)
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("openproject URL: %w", domain.ErrNotConfigured)
	}

	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(basicAuthUser, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 300 {
			return fmt.Errorf("openproject API %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Do(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
