package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dvschultz/MUNIT-runway/adapters/metrics"
)

// Holder provides thread-safe access to the current manifest with hot
// reload support. A failed reload keeps the previous manifest.
type Holder struct {
	mu       sync.RWMutex
	manifest *Manifest
	path     string
	logger   zerolog.Logger
	metrics  *metrics.Collector
	watcher  *fsnotify.Watcher
	onChange []func(*Manifest)
	stopCh   chan struct{}
}

// NewHolder loads the initial manifest from path.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	m, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		manifest: m,
		path:     absPath,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// SetMetrics wires a collector for reload counters. Must be called
// before watching starts.
func (h *Holder) SetMetrics(c *metrics.Collector) { h.metrics = c }

// Get returns the current manifest.
func (h *Holder) Get() *Manifest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.manifest
}

// Reload re-parses the manifest from disk. On error the old manifest
// stays active.
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading manifest")

	next, err := ParseFile(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("manifest reload failed, keeping old manifest")
		if h.metrics != nil {
			h.metrics.ManifestReloadErrors.Inc()
		}
		return fmt.Errorf("reload manifest: %w", err)
	}

	h.mu.Lock()
	prev := h.manifest
	h.manifest = next
	h.mu.Unlock()

	if prev.Name != next.Name {
		h.logger.Info().Str("old", prev.Name).Str("new", next.Name).Msg("manifest name changed")
	}
	if len(prev.Commands) != len(next.Commands) {
		h.logger.Info().Int("old", len(prev.Commands)).Int("new", len(next.Commands)).Msg("command count changed")
	}

	for _, fn := range h.onChange {
		fn(next)
	}

	if h.metrics != nil {
		h.metrics.ManifestReloads.Inc()
	}
	h.logger.Info().Msg("manifest reloaded successfully")
	return nil
}

// OnChange registers a callback invoked after each successful reload.
func (h *Holder) OnChange(fn func(*Manifest)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile watches the manifest file and reloads on change.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory; editors doing atomic saves replace the
	// file rather than writing it in place.
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching manifest for changes")
	return nil
}

// WatchSignals reloads the manifest on SIGHUP.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading manifest")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop ends watching for file changes and signals.
func (h *Holder) Stop() {
	close(h.stopCh)
	if h.watcher != nil {
		h.watcher.Close()
	}
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("manifest file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

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
