package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnolang/ccheck/internal/types"
)

// ReportFunc receives the issues of a re-analyzed manifest.
type ReportFunc func(filename string, issues []tt.Issue, err error)

// Watcher re-runs the engine on manifests that change below a set of
// directories.
type Watcher struct {
	engine  *Engine
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	report  ReportFunc

	// Debounce merges bursts of writes to one file into one run.
	Debounce time.Duration

	mu         sync.Mutex
	isWatching bool
}

// NewWatcher creates a watcher. report is called from the watch goroutine.
func NewWatcher(engine *Engine, logger *zap.Logger, report ReportFunc) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &Watcher{
		engine:   engine,
		logger:   logger,
		watcher:  fw,
		report:   report,
		Debounce: 100 * time.Millisecond,
	}, nil
}

// Add watches dir and its subdirectories.
func (w *Watcher) Add(dir string) error {
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Watch processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.isWatching {
		w.mu.Unlock()
		return errors.New("already watching")
	}
	w.isWatching = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.isWatching = false
		w.mu.Unlock()
	}()

	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	done := make(chan struct{})
	defer close(done)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isManifestEvent(event) {
				continue
			}
			name := event.Name
			if t, ok := pending[name]; ok {
				t.Stop()
			}
			pending[name] = time.AfterFunc(w.Debounce, func() {
				select {
				case fire <- name:
				case <-done:
				}
			})
		case name := <-fire:
			delete(pending, name)
			w.handle(name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func isManifestEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ManifestExt) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) handle(filename string) {
	issues, err := w.engine.Run(filename)
	if err != nil {
		w.logger.Error("error analyzing manifest", zap.String("file", filename), zap.Error(err))
	} else {
		w.logger.Info("manifest analyzed", zap.String("file", filename), zap.Int("issues", len(issues)))
	}
	if w.report != nil {
		w.report(filename, issues, err)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
