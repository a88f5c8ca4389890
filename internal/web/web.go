// Package web embeds the HTML views and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded views
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"amount": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"selected": func(a, b string) bool {
			return a == b
		},
	}).ParseFS(templateFS, "templates/*.html")
}

// Static returns the asset tree served under /static
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
