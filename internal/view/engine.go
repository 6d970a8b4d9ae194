package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/service-portal/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile  = "layout.html"
	layoutBlock = "layout"
)

// Engine renders the portal's pages. Every page is parsed together with the shared
// layout and rendered through its "layout" block. It satisfies fiber.Views.
type Engine struct {
	fsys fs.FS
	dir  string

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New returns an engine over the embedded templates.
func New() *Engine {
	return NewFromFS(templateFS, "templates")
}

// NewFromFS returns an engine reading *.html files from dir inside fsys.
func NewFromFS(fsys fs.FS, dir string) *Engine {
	return &Engine{fsys: fsys, dir: dir}
}

// Load parses every page. fiber calls it once when the app is created.
func (e *Engine) Load() error {
	layout, err := fs.ReadFile(e.fsys, path.Join(e.dir, layoutFile))
	if err != nil {
		return fmt.Errorf("view: read layout: %w", err)
	}
	files, err := fs.Glob(e.fsys, path.Join(e.dir, "*.html"))
	if err != nil {
		return fmt.Errorf("view: list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		base := path.Base(file)
		if base == layoutFile {
			continue
		}
		body, err := fs.ReadFile(e.fsys, file)
		if err != nil {
			return fmt.Errorf("view: read %s: %w", base, err)
		}
		name := strings.TrimSuffix(base, ".html")
		tmpl, err := template.New(name).Funcs(funcs).Parse(string(layout))
		if err != nil {
			return fmt.Errorf("view: parse layout for %s: %w", name, err)
		}
		if _, err := tmpl.Parse(string(body)); err != nil {
			return fmt.Errorf("view: parse %s: %w", base, err)
		}
		pages[name] = tmpl
	}

	e.mu.Lock()
	e.pages = pages
	e.mu.Unlock()
	return nil
}

// Render executes the named page into out. Layout arguments are ignored: every page
// uses the shared layout.
func (e *Engine) Render(out io.Writer, name string, binding interface{}, _ ...string) error {
	e.mu.RLock()
	loaded := e.pages != nil
	e.mu.RUnlock()
	if !loaded {
		if err := e.Load(); err != nil {
			return err
		}
	}

	e.mu.RLock()
	tmpl, ok := e.pages[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("view: template %q not found", name)
	}
	return tmpl.ExecuteTemplate(out, layoutBlock, binding)
}

var funcs = template.FuncMap{
	"statuses": domain.RequestStatuses,
	"statusClass": func(status domain.RequestStatus) string {
		switch status {
		case domain.RequestStatusApproved:
			return "info"
		case domain.RequestStatusCompleted:
			return "success"
		default:
			return "warning"
		}
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}
