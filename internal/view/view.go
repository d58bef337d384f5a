// Package view renders the HTML pages and htmx fragments. Templates are
// embedded and parsed once at startup.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"skillbridge/internal/api"
	"skillbridge/internal/notice"
	"strings"
	"time"
)

//go:embed templates
var templateFS embed.FS

// Page is what the layout needs around every page body.
type Page struct {
	Title   string
	User    *api.User
	Flashes []notice.Toast
	Data    any
}

type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

// New parses the embedded templates. Times are rendered in loc.
func New(loc *time.Location) (*Renderer, error) {
	base, err := template.New("").Funcs(Funcs(loc)).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}

	return &Renderer{pages: pages, fragments: base}, nil
}

// Page renders a full page inside the layout.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return write(w, status, t, "layout", p)
}

// Fragment renders a partial on its own, for htmx swaps.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name string, data any) error {
	return write(w, status, r.fragments, name, data)
}

// write buffers the output so a template error never leaves half a page on
// the wire.
func write(w http.ResponseWriter, status int, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
