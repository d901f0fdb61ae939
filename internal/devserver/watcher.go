package devserver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/maquette-dev/maquette/internal/logging"
	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/preview"
)

// Watcher monitors manifest files and feeds edits into the preview
// harness. Debouncing is the harness's job; the watcher forwards every
// parseable change as soon as it lands.
type Watcher struct {
	dirs    []string
	harness *preview.Harness
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	fsw     *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given directories.
func NewWatcher(dirs []string, h *preview.Harness, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.ForComponent("watcher")
	}
	return &Watcher{dirs: dirs, harness: h, logger: logger}
}

// Start watches until the context is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.fsw = nil
		w.mu.Unlock()
		fsw.Close()
	}()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Stop closes the underlying filesystem watcher, which unblocks Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		w.fsw.Close()
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !isManifestFile(ev.Name) {
		return
	}

	m, err := loadManifestFile(ev.Name)
	if err != nil {
		// Editors save partial files; the next write will parse.
		w.logger.Debug("skipping unparseable manifest", "file", ev.Name, "error", err)
		return
	}

	w.logger.Debug("manifest changed", "file", ev.Name, "manifest", m.ID)
	w.harness.Update(m)
}

func isManifestFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func loadManifestFile(path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return manifest.Parse(data)
	}
	return manifest.ParseYAML(data)
}
