// Package workpackage holds the OpenProject work-package wire records and the
// normalization rules that flatten them into display summaries.
package workpackage

import (
	"strconv"
	"strings"
)

// Link is an OpenProject HAL link with an optional human-readable title.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// EmbeddedStatus is the status record embedded in a work package response.
// IsClosed is a pointer because older instances omit the flag entirely.
type EmbeddedStatus struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsClosed *bool  `json:"isClosed"`
}

// WorkPackage mirrors the subset of the OpenProject v3 work package record
// the relay reads. The same logical field (status) can appear in up to three
// places on the wire; Summarize and IsOpen apply a fixed precedence.
type WorkPackage struct {
	ID          int     `json:"id"`
	Subject     string  `json:"subject"`
	LockVersion int     `json:"lockVersion"`
	StartDate   *string `json:"startDate"`
	DueDate     *string `json:"dueDate"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`

	Embedded struct {
		Status *EmbeddedStatus `json:"status"`
	} `json:"_embedded"`

	Links struct {
		Status   Link `json:"status"`
		Type     Link `json:"type"`
		Assignee Link `json:"assignee"`
		Project  Link `json:"project"`
	} `json:"_links"`
}

// Summary is the flat projection used by digests, views, and reminders.
// Never mutated after construction.
type Summary struct {
	ID        int    `json:"id"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Assignee  string `json:"assignee,omitempty"`
	Project   string `json:"project,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
}

// Summarize flattens a wire record into a Summary. Status name precedence:
// embedded status name, then status link title, then the numeric id parsed
// from the status href.
func Summarize(wp *WorkPackage) Summary {
	s := Summary{
		ID:       wp.ID,
		Subject:  wp.Subject,
		Status:   statusName(wp),
		Assignee: wp.Links.Assignee.Title,
		Project:  wp.Links.Project.Title,
	}
	if wp.StartDate != nil {
		s.StartDate = *wp.StartDate
	}
	if wp.DueDate != nil {
		s.DueDate = *wp.DueDate
	}
	return s
}

func statusName(wp *WorkPackage) string {
	if wp.Embedded.Status != nil && wp.Embedded.Status.Name != "" {
		return wp.Embedded.Status.Name
	}
	if wp.Links.Status.Title != "" {
		return wp.Links.Status.Title
	}
	if id, ok := StatusLinkID(wp.Links.Status.Href); ok {
		return "#" + strconv.Itoa(id)
	}
	return ""
}

// IsOpen reports whether a work package is still open. Precedence:
//  1. embedded status closed-flag, when present
//  2. embedded status name != "closed" (case-insensitive)
//  3. status link title != "closed" (case-insensitive)
//  4. numeric status id from the href trailing segment: open iff <= threshold
//  5. open, so genuinely open items are never hidden by missing data
func IsOpen(wp *WorkPackage, threshold int) bool {
	if es := wp.Embedded.Status; es != nil {
		if es.IsClosed != nil {
			return !*es.IsClosed
		}
		if es.Name != "" {
			return !strings.EqualFold(es.Name, "closed")
		}
	}
	if t := wp.Links.Status.Title; t != "" {
		return !strings.EqualFold(t, "closed")
	}
	if id, ok := StatusLinkID(wp.Links.Status.Href); ok {
		return id <= threshold
	}
	return true
}

// StatusLinkID parses the numeric id from the trailing path segment of a
// status href such as "/api/v3/statuses/12".
func StatusLinkID(href string) (int, bool) {
	if href == "" {
		return 0, false
	}
	seg := href[strings.LastIndex(href, "/")+1:]
	id, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return id, true
}
