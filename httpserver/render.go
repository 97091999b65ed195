package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title  string
	Viewer Viewer
	Error  string
	Data   interface{}
}

// TemplateRenderer renders one of the embedded pages inside the shared layout.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"stars": func(rating int) string {
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	},
	"rating": func(avg float64) string {
		return fmt.Sprintf("%.1f", avg)
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"seq": func(from, to int) []int {
		var out []int
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &TemplateRenderer{pages: make(map[string]*template.Template)}
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

func (s *Server) render(c echo.Context, status int, name, title string, data interface{}) error {
	return s.renderPage(c, status, name, Page{Title: title, Data: data})
}

func (s *Server) renderPage(c echo.Context, status int, name string, p Page) error {
	p.Viewer = viewerFrom(c)
	return c.Render(status, name, p)
}
