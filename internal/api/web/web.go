// Package web embeds the browser front end: the prompt form page and its script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData is rendered into generate_prompt.html.
type PageData struct {
	Title     string
	Version   string
	Providers []string
}

// Templates parses every embedded page template.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static/ is embedded at build time; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
