// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// SETTINGS FILE WATCHER
// =============================================================================

// Watcher reloads the settings file when it changes on disk and hands the
// resulting config to a callback. External edits (another process, a text
// editor) behave exactly like an in-app settings update.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(Config)

	mu      sync.Mutex
	last    Config
	timer   *time.Timer
	closed  bool
	started bool
}

// NewWatcher creates a watcher over the store's settings file. onChange is
// called with the freshly loaded config after each observed change.
func NewWatcher(store *Store, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cfg, _ := store.Load()
	return &Watcher{
		store:    store,
		watcher:  fw,
		debounce: 250 * time.Millisecond,
		onChange: onChange,
		last:     cfg,
	}, nil
}

// Watch starts watching. The parent directory is watched rather than the file
// itself so atomic rename-into-place writes are observed.
func (w *Watcher) Watch() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}

	go w.processEvents()
	return nil
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("SETTINGS_WATCHER_PANIC: recovered: %v", r)
		}
	}()

	target := filepath.Base(w.store.Path())
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("SETTINGS_WATCHER_ERROR: %v", err)
		}
	}
}

// scheduleReload debounces bursts of write events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.store.Load()
	if err != nil {
		log.Printf("SETTINGS_RELOAD_FAILED: %v", err)
		return
	}

	w.mu.Lock()
	if w.closed || cfg == w.last {
		w.mu.Unlock()
		return
	}
	w.last = cfg
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(cfg)
	}
}
