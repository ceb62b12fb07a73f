package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
)

//go:embed templates/*.html
var embedded embed.FS

const layoutFile = "layout.html"

// Page names. Each is parsed together with the layout from <name>.html.
const (
	PageWelcome    = "welcome"
	PageLogin      = "login"
	PageRegister   = "register"
	PageHome       = "home"
	PageHistory    = "history"
	PageStatistics = "statistics"
)

var pageNames = []string{PageWelcome, PageLogin, PageRegister, PageHome, PageHistory, PageStatistics}

// Renderer executes the page templates.
type Renderer struct {
	fsys   fs.FS
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewRenderer parses the templates in dir, or the embedded ones when dir is
// empty.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("templates directory: %w", err)
		}
		fsys = os.DirFS(dir)
	}

	r := &Renderer{
		fsys:   fsys,
		dir:    dir,
		logger: logger.With("component", "web.pages"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the templates directory, or "" for the embedded templates.
func (r *Renderer) Dir() string {
	return r.dir
}

// Reload parses every page again and swaps the set in only if all of them
// parse.
func (r *Renderer) Reload() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(r.fsys, layoutFile, name+".html")
		if err != nil {
			return fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "pages", len(pages), "dir", r.dir)
	return nil
}

// Render writes page name with data and status. The page is executed into
// a buffer first so a template error never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
