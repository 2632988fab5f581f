// Package definitions loads YAML route definitions from a directory and keeps
// them current while the server runs.
package definitions

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/artpar/agencms/core/schema"
	"github.com/artpar/agencms/ports"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to the current definition set with hot
// reload support. A reload that fails keeps the previous set.
type Holder struct {
	mu       sync.RWMutex
	defs     []schema.Definition
	dir      string
	metrics  ports.Metrics
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func([]schema.Definition)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads the definitions under dir. A nil metrics discards events.
func NewHolder(dir string, metrics ports.Metrics, logger zerolog.Logger) (*Holder, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	defs, err := schema.ParseDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	h := &Holder{
		defs:    defs,
		dir:     absDir,
		metrics: metrics,
		logger:  logger.With().Str("component", "definitions").Logger(),
		stopCh:  make(chan struct{}),
	}
	h.logger.Info().Str("dir", absDir).Int("routes", len(defs)).Msg("definitions loaded")
	return h, nil
}

// Definitions returns the current definitions. The slice is a copy.
func (h *Holder) Definitions() []schema.Definition {
	h.mu.RLock()
	defer h.mu.RUnlock()

	defs := make([]schema.Definition, len(h.defs))
	copy(defs, h.defs)
	return defs
}

// Dir returns the watched directory.
func (h *Holder) Dir() string {
	return h.dir
}

// Reload re-reads the directory and swaps the definition set.
func (h *Holder) Reload() error {
	defs, err := schema.ParseDir(h.dir)
	if err != nil {
		h.metrics.DefinitionsReloaded(false)
		h.logger.Error().Err(err).Msg("definitions reload failed, keeping old set")
		return fmt.Errorf("reload definitions: %w", err)
	}

	h.mu.Lock()
	old := len(h.defs)
	h.defs = defs
	listeners := make([]func([]schema.Definition), len(h.onChange))
	copy(listeners, h.onChange)
	h.mu.Unlock()

	h.metrics.DefinitionsReloaded(true)
	h.logger.Info().Int("old", old).Int("new", len(defs)).Msg("definitions reloaded")

	for _, fn := range listeners {
		fn(defs)
	}
	return nil
}

// OnChange registers a callback run after every successful reload.
func (h *Holder) OnChange(fn func([]schema.Definition)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Watch starts watching the directory tree. Changes to .yaml and .yml files
// trigger a reload.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify does not recurse, so every subdirectory is added.
	err = filepath.WalkDir(h.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	h.watcher = watcher
	go h.watchLoop()

	h.logger.Info().Str("dir", h.dir).Msg("watching definitions for changes")
	return nil
}

// WatchSignals reloads on SIGHUP.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading definitions")
				_ = h.Reload()
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop stops watching. It is safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := h.watcher.Add(event.Name); err != nil {
						h.logger.Error().Err(err).Str("dir", event.Name).Msg("watch new directory")
					}
					continue
				}
			}

			if !isDefinitionFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			h.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("definition file changed")
			_ = h.Reload()

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func isDefinitionFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
