// Package renderer turns reconciliation results into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embedded embed.FS

// templates is the flat view of the embedded templates directory.
var templates, _ = fs.Sub(embedded, "templates")

// ReportRenderOptions holds configuration for rendering a reconciliation report.
type ReportRenderOptions struct {
	BySymbol   bool // Sort the lots by symbol then date sold instead of date sold only.
	SkipLots   bool // Do not render the lots section.
	SkipSeries bool // Do not render the cumulative gain section.
}

// RenderReport renders the Report struct to a markdown string.
func RenderReport(r *Report, opts ReportRenderOptions) string {
	partials := map[string]string{
		"report_title":  "report_title.md",
		"report_totals": "report_totals.md",
		"report_lots":   "report_lots.md",
		"report_series": "report_series.md",
	}
	// An empty file name results in an empty template.
	if opts.SkipLots {
		partials["report_lots"] = ""
	}
	if opts.SkipSeries {
		partials["report_series"] = ""
	}
	return renderTemplate("report", "report.md", partials, r)
}

// RenderRates renders the outcome of a rate update.
func RenderRates(r *RatesUpdate) string {
	return renderTemplate("rates", "rates.md", nil, r)
}

// RenderFetches renders the rate batches in store.
func RenderFetches(f *Fetches) string {
	return renderTemplate("fetches", "fetches.md", nil, f)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
