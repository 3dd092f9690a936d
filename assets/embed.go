// Package assets bundles the templates rendered by the frame server.
package assets

import (
	"embed"
	htmltemplate "html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var FS embed.FS

// Templates parses every embedded template. Names are the file base names,
// e.g. "frame.html.tmpl".
func Templates() (*htmltemplate.Template, error) {
	sub, err := fs.Sub(FS, "templates")
	if err != nil {
		return nil, err
	}
	return htmltemplate.New("assets").Funcs(htmltemplate.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(sub, "*.tmpl")
}
