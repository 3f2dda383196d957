// Package renderer renders the outcome of the commands as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/t212sync/importer"
	"github.com/etnz/t212sync/t212"
)

//go:embed templates/*.md
var templates embed.FS

// funcs are the functions available to every template.
var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
}

// Summary renders the report of a synchronization run.
func Summary(rep importer.Report) string {
	partials := map[string]string{
		"summary_title":   "summary_title.md",
		"summary_counts":  "summary_counts.md",
		"summary_windows": "summary_windows.md",
	}
	return renderTemplate("summary", "summary.md", partials, rep)
}

// Exports renders the list of export reports known by the broker.
func Exports(jobs []t212.ExportJob) string {
	return renderTemplate("exports", "exports.md", nil, jobs)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
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
