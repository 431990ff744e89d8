// Package roadmap models OpenProject versions and their completion state.
package roadmap

import "math"

// Version mirrors the subset of the OpenProject v3 version record the relay
// reads.
type Version struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description struct {
		Raw string `json:"raw"`
	} `json:"description"`
	Status    string  `json:"status"`
	Sharing   string  `json:"sharing"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`

	Links struct {
		DefiningProject struct {
			Title string `json:"title"`
		} `json:"definingProject"`
	} `json:"_links"`
}

// Summary is a version enriched with work-package counts for display.
type Summary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Sharing     string `json:"sharing"`
	StartDate   string `json:"startDate,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	Project     string `json:"project,omitempty"`
	Total       int    `json:"total"`
	Closed      int    `json:"closed"`
	Progress    int    `json:"progress"`
}

// Summarize projects a version plus its counts into a Summary.
func Summarize(v *Version, total, closed int) Summary {
	s := Summary{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description.Raw,
		Status:      v.Status,
		Sharing:     v.Sharing,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		Project:     v.Links.DefiningProject.Title,
		Total:       total,
		Closed:      closed,
		Progress:    Progress(closed, total),
	}
	if v.StartDate != nil {
		s.StartDate = *v.StartDate
	}
	if v.EndDate != nil {
		s.DueDate = *v.EndDate
	}
	return s
}

// Progress is the completion percentage, rounded to the nearest integer.
// A version with no work packages reports 0.
func Progress(closed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(closed) / float64(total) * 100))
}
