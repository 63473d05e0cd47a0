package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/medsai/report-engine/internal/metrics"
	"github.com/medsai/report-engine/pkg/reporting"
)

// CatalogWatcher keeps a workup catalog file loaded and reloads it when the
// file changes. A reload that fails to parse or validate keeps the previous
// catalog in service.
type CatalogWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  atomic.Pointer[reporting.WorkupCatalog]
	stopChan chan struct{}
	stopOnce sync.Once
	debounce time.Duration

	mu       sync.RWMutex
	onReload func(*reporting.WorkupCatalog)
}

// NewCatalogWatcher loads path once and prepares a watcher for it. The
// initial load must succeed.
func NewCatalogWatcher(path string) (*CatalogWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("workup catalog path is empty")
	}
	path = filepath.Clean(path)

	catalog, err := reporting.LoadWorkupCatalog(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}

	cw := &CatalogWatcher{
		path:     path,
		watcher:  watcher,
		stopChan: make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}
	cw.current.Store(catalog)
	return cw, nil
}

// Current returns the catalog in service.
func (cw *CatalogWatcher) Current() *reporting.WorkupCatalog {
	return cw.current.Load()
}

// SetReloadCallback registers fn to run after every successful reload.
func (cw *CatalogWatcher) SetReloadCallback(fn func(*reporting.WorkupCatalog)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.onReload = fn
}

// Start watches the catalog's directory, which also catches editors that
// replace the file instead of writing it in place.
func (cw *CatalogWatcher) Start() error {
	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch catalog directory %s: %w", dir, err)
	}
	go cw.handleEvents(cw.watcher.Events, cw.watcher.Errors)
	log.Info().Str("path", cw.path).Msg("Started watching workup catalog for changes")
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (cw *CatalogWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		_ = cw.watcher.Close()
	})
}

// Reload re-reads the catalog file.
func (cw *CatalogWatcher) Reload() error {
	catalog, err := reporting.LoadWorkupCatalog(cw.path)
	metrics.RecordCatalogReload(err == nil)
	if err != nil {
		log.Error().Err(err).Str("path", cw.path).Msg("Keeping previous workup catalog")
		return err
	}
	cw.current.Store(catalog)
	log.Info().
		Str("path", cw.path).
		Int("panels", len(catalog.Panels)).
		Msg("Reloaded workup catalog")

	cw.mu.RLock()
	fn := cw.onReload
	cw.mu.RUnlock()
	if fn != nil {
		fn(catalog)
	}
	return nil
}

func (cw *CatalogWatcher) handleEvents(events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Wait for the writer to finish.
			time.Sleep(cw.debounce)
			log.Debug().Str("event", event.Op.String()).Msg("Detected workup catalog change")
			_ = cw.Reload()

		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Catalog watcher error")

		case <-cw.stopChan:
			return
		}
	}
}
