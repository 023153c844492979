package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/weidustudio/studio/internal/planner"
)

const debounceInterval = 100 * time.Millisecond

// Watcher serves the pipeline in path and reloads it on change. When the
// file is missing or invalid the default pipeline is served.
type Watcher struct {
	path string

	mu      sync.RWMutex
	current planner.Pipeline
	loaded  bool
}

var _ planner.PipelineSource = (*Watcher)(nil)

func NewWatcher(path string) *Watcher {
	w := &Watcher{path: path}
	w.reload()
	return w
}

func (w *Watcher) Pipeline() planner.Pipeline {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// FromFile reports whether the served pipeline came from the file.
func (w *Watcher) FromFile() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

func (w *Watcher) reload() {
	p, err := Load(w.path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		slog.Warn("pipeline: using default pipeline", "path", w.path, "error", err)
		w.current = planner.DefaultPipeline()
		w.loaded = false
		return
	}
	slog.Info("pipeline: loaded", "path", w.path, "stages", len(p.Stages))
	w.current = p
	w.loaded = true
}

// Run watches the file's directory until ctx is done. Watching the
// directory catches editors and deploy tools that replace the file by
// rename.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, w.reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("pipeline: watch error", "path", w.path, "error", err)
		}
	}
}
