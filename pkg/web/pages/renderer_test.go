package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webeng-hq/hello/pkg/statistics"
)

// writeTemplates copies the embedded templates into a temporary directory.
func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := embedded.ReadDir("templates")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		data, err := embedded.ReadFile("templates/" + e.Name())
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func render(t *testing.T, r *Renderer, name string, v View) string {
	t.Helper()
	w := httptest.NewRecorder()
	if err := r.Render(w, http.StatusOK, name, v); err != nil {
		t.Fatalf("Render(%s) error = %v", name, err)
	}
	return w.Body.String()
}

func TestNewRenderer_Embedded(t *testing.T) {
	r, err := NewRenderer("", discard())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	for _, name := range pageNames {
		render(t, r, name, View{Title: name, Stats: &statistics.Statistics{}})
	}

	if err := r.Render(httptest.NewRecorder(), http.StatusOK, "missing", View{}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestNewRenderer_MissingDir(t *testing.T) {
	if _, err := NewRenderer(filepath.Join(t.TempDir(), "nope"), discard()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRenderer_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := writeTemplates(t)
	r, err := NewRenderer(dir, discard())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte(`{{define "content"}}{{.Broken`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(); err == nil {
		t.Fatal("expected parse error")
	}
	if out := render(t, r, PageHome, View{Message: "still here"}); !strings.Contains(out, "still here") {
		t.Errorf("previous templates should stay in use: %s", out)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := writeTemplates(t)
	r, err := NewRenderer(dir, discard())
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(r, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx) }()
	t.Cleanup(func() { _ = w.Stop() })

	// Give the watcher goroutine time to start.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "home.html"), []byte(`{{define "content"}}<p>edited {{.Message}}</p>{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(render(t, r, PageHome, View{Message: "x"}), "edited x") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("templates were not reloaded after the edit")
}

func TestNewWatcher_Embedded(t *testing.T) {
	r, err := NewRenderer("", discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewWatcher(r, 0); err == nil {
		t.Error("expected error watching embedded templates")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	calls := make(chan int, 10)

	for i := 0; i < 5; i++ {
		i := i
		d.Trigger(func() { calls <- i })
	}

	select {
	case got := <-calls:
		if got != 4 {
			t.Errorf("expected the last callback, got %d", got)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	d.Stop()
	d.Trigger(func() { calls <- 99 })
	select {
	case got := <-calls:
		t.Errorf("callback %d ran after Stop", got)
	case <-time.After(60 * time.Millisecond):
	}
}
