package service

import (
	"fmt"
	"html/template"
	"io"

	"github.com/opbridge/opbridge/internal/domain/workpackage"
)

// viewSection is one work-package table in the HTML digest.
type viewSection struct {
	Title string
	Items []workpackage.Summary
}

// viewData feeds the HTML digest template.
type viewData struct {
	Date       string
	TrackerURL string
	Sections   []viewSection
	Agg        *Aggregate
}

var viewTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Daily summary {{.Date}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
.bar { background: #eee; width: 200px; height: 1em; }
.bar div { background: #3a7; height: 100%; }
</style>
</head>
<body>
<h1>Daily summary {{.Date}}</h1>
{{range .Sections}}{{if .Items}}
<h2>{{.Title}}</h2>
<table>
<tr><th>ID</th><th>Subject</th><th>Status</th><th>Assignee</th><th>Due</th></tr>
{{range .Items}}
<tr id="wp-{{.ID}}">
<td><a href="{{$.TrackerURL}}/work_packages/{{.ID}}">#{{.ID}}</a></td>
<td>{{.Subject}}</td>
<td>{{.Status}}</td>
<td>{{.Assignee}}</td>
<td>{{.DueDate}}</td>
</tr>
{{end}}
</table>
{{end}}{{end}}
{{if .Agg.Roadmaps}}
<h2>Roadmaps</h2>
<table>
<tr><th>Version</th><th>Project</th><th>Due</th><th>Progress</th><th></th></tr>
{{range .Agg.Roadmaps}}
<tr>
<td>{{.Name}}</td>
<td>{{.Project}}</td>
<td>{{.DueDate}}</td>
<td>{{.Closed}}/{{.Total}} ({{.Progress}}%)</td>
<td><div class="bar"><div style="width: {{.Progress}}%"></div></div></td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// RenderHTML writes the hypertext digest view.
func (s *SummaryService) RenderHTML(w io.Writer, agg *Aggregate) error {
	data := viewData{
		Date:       agg.GeneratedAt.Format(dateLayout),
		TrackerURL: s.trackerURL,
		Agg:        agg,
		Sections: []viewSection{
			{Title: "Due today", Items: agg.DueToday},
			{Title: "Overdue", Items: agg.Overdue},
			{Title: "In progress", Items: agg.InProgress},
		},
	}
	if err := viewTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render summary view: %w", err)
	}
	return nil
}
