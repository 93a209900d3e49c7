// Package report renders tracking results into a notification body.
// Formatting is presentation only: fields are emitted as-is and missing
// values become empty cells, never errors.
package report

import (
	"html/template"
	"strings"

	"price-tracker/internal/storage"
	"price-tracker/internal/tracker"
)

const bodyTemplate = `<h3>Daily Price Summary</h3>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
  <tr><th>Product</th><th>Site</th><th>Price</th><th>Date</th></tr>
{{- range .Summary}}
  <tr><td>{{.ProductName}}</td><td>{{.Site}}</td><td>&#8377;{{.Price}}</td><td>{{.Date}}</td></tr>
{{- end}}
</table>
<br>
{{- if .Drops}}
<h3 style="color:red;">Price Drop Alerts</h3>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
  <tr><th>Product</th><th>Site</th><th>Old Price</th><th>New Price</th><th>Link</th></tr>
{{- range .Drops}}
  <tr><td>{{.ProductName}}</td><td>{{.Site}}</td><td>&#8377;{{.OldPrice}}</td><td>&#8377;{{.NewPrice}}</td><td><a href="{{.URL}}">View Product</a></td></tr>
{{- end}}
</table>
{{- else}}
<p>No price drops today.</p>
{{- end}}
<br>
`

var tmpl = template.Must(template.New("report").Parse(bodyTemplate))

// Report is a rendered notification: a title plus an HTML body.
type Report struct {
	Title string
	HTML  string
}

type summaryRow struct {
	ProductName string
	Site        string
	Price       string
	Date        string
}

type dropRow struct {
	ProductName string
	Site        string
	OldPrice    string
	NewPrice    string
	URL         string
}

// Build renders the summary and drop lists. Every summary entry is
// tabulated; an empty drop list renders an explicit notice rather than
// omitting the section.
func Build(title string, summary []storage.Observation, drops []tracker.Drop) Report {
	data := struct {
		Summary []summaryRow
		Drops   []dropRow
	}{}

	for _, obs := range summary {
		data.Summary = append(data.Summary, summaryRow{
			ProductName: obs.ProductName,
			Site:        obs.Site,
			Price:       obs.Price.String(),
			Date:        obs.Date.Format(storage.DateLayout),
		})
	}
	for _, drop := range drops {
		data.Drops = append(data.Drops, dropRow{
			ProductName: drop.ProductName,
			Site:        drop.Site,
			OldPrice:    drop.OldPrice.String(),
			NewPrice:    drop.NewPrice.String(),
			URL:         drop.URL,
		})
	}

	var buf strings.Builder
	// the template touches only plain string fields, execution cannot fail
	_ = tmpl.Execute(&buf, data)

	return Report{Title: title, HTML: buf.String()}
}
