// Package view renders the forum's HTML pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageIndex     = "index"
	PageThread    = "thread"
	PageNewThread = "new_thread"
	PageLogin     = "login"
	PageRegister  = "register"
)

var pages = []string{PageIndex, PageThread, PageNewThread, PageLogin, PageRegister}

// Layout is what every template receives: the page's own data plus the
// signed-in user, if any.
type Layout struct {
	CurrentUser *domain.Identity
	Page        any
}

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"timeago": timeago,
		"iso":     func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer is NewRenderer that panics; templates are embedded so a
// failure is a build defect.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	layout := Layout{Page: data}
	if c != nil {
		if id, ok := middleware.IdentityFrom(c); ok {
			layout.CurrentUser = &id
		}
	}
	return t.ExecuteTemplate(w, "layout", layout)
}

// Static returns the embedded assets served under /public.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func timeago(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.UTC().Format("Jan 2, 2006")
	}
}
