package server

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/kawa-dev/contrib-board/internal/domain"
	"github.com/kawa-dev/contrib-board/internal/usecase"
)

// column is one sortable table header: clicking it re-sorts by that field,
// clicking again toggles the direction.
type column struct {
	Label  string
	Href   string
	Marker string
}

type indexView struct {
	Columns []column
	Issues  []domain.Issue
	Summary domain.Summary
}

var columnLabels = map[string]string{
	"repo":     "Repo",
	"number":   "#",
	"title":    "Title",
	"creator":  "Creator",
	"created":  "Created",
	"approved": "Approved by",
	"merged":   "Merged",
}

func buildColumns(field string, descending bool) []column {
	cols := make([]column, 0, len(domain.SortFields))
	for _, f := range domain.SortFields {
		order := "asc"
		marker := ""
		if f == field {
			if descending {
				marker = " ▼"
			} else {
				order = "desc"
				marker = " ▲"
			}
		}
		cols = append(cols, column{
			Label:  columnLabels[f],
			Href:   fmt.Sprintf("/?sort=%s&order=%s", f, order),
			Marker: marker,
		})
	}
	return cols
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Contrib Board</title></head>
<body>
<h1>Contrib Board</h1>
<p>{{.Summary.Total}} total / {{.Summary.Merged}} merged / {{.Summary.Unmerged}} open
{{- if gt .Summary.Total 0}} &middot; mean age {{printf "%.1f" .Summary.MeanAgeDays}}d{{end}}</p>
<table border="1" cellpadding="4">
<tr>
{{- range .Columns}}
<th><a href="{{.Href}}">{{.Label}}</a>{{.Marker}}</th>
{{- end}}
</tr>
{{- range .Issues}}
<tr>
<td>{{.Repo}}</td>
<td>{{.Number}}</td>
<td><a href="{{.URL}}">{{.Title}}</a></td>
<td>{{.Creator}}</td>
<td>{{if not .CreatedAt.IsZero}}{{.CreatedAt.Format "2006-01-02"}}{{end}}</td>
<td>{{if .Approved}}{{.ApprovedBy}}{{else}}&mdash;{{end}}</td>
<td>{{if .Merged}}yes{{else}}no{{end}}</td>
</tr>
{{- end}}
</table>
</body>
</html>
`))

func renderIndex(c *fiber.Ctx, ov usecase.Overview) error {
	view := indexView{
		Columns: buildColumns(ov.SortField, ov.Descending),
		Issues:  ov.Issues,
		Summary: ov.Summary,
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
