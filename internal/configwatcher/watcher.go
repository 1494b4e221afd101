/*
 *  Licensed to the Apache Software Foundation (ASF) under one
 *  or more contributor license agreements.  See the NOTICE file
 *  distributed with this work for additional information
 *  regarding copyright ownership.  The ASF licenses this file
 *  to you under the Apache License, Version 2.0 (the
 *  "License"); you may not use this file except in compliance
 *  with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing,
 *  software distributed under the License is distributed on an
 *   * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 *  KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations
 *  under the License.
 */

// Package configwatcher watches a deployment.toml file on disk and
// reparses it on every write, handing the fresh config.Config to a
// caller-supplied ReloadFunc rather than mutating a package global.
package configwatcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/synapse-go/mediation-core/internal/config"
)

// ReloadFunc receives a freshly reparsed config. An error return is logged
// but does not stop the watch loop; the previous config stays in effect
// until a subsequent reload succeeds.
type ReloadFunc func(*config.Config) error

// Watcher reloads a single config file on change.
type Watcher struct {
	path    string
	reload  ReloadFunc
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	current *config.Config
	closed  bool
}

// New builds a Watcher over path, loading it once synchronously before
// returning so callers always have a valid initial Config.
func New(path string, reload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configwatcher: initial load of %s: %w", path, err)
	}
	if reload != nil {
		if err := reload(cfg); err != nil {
			return nil, fmt.Errorf("configwatcher: initial reload callback: %w", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("configwatcher: cannot create fsnotify watcher: %w", err)
	}
	// Watch the containing directory rather than the file itself: editors
	// that save via rename-into-place replace the inode, which an
	// fsnotify watch on the old file descriptor would silently miss.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("configwatcher: cannot watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{path: path, reload: reload, logger: logger, watcher: fw, current: cfg}
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded config.
func (w *Watcher) Current() *config.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) loop() {
	target := filepath.Clean(w.path)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reloadOnce()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("configwatcher: watch error", "error", err)
		}
	}
}

func (w *Watcher) reloadOnce() {
	cfg, err := config.ReadFile(w.path)
	if err != nil {
		w.logger.Error("configwatcher: reload failed, keeping previous config", "path", w.path, "error", err)
		return
	}
	if w.reload != nil {
		if err := w.reload(cfg); err != nil {
			w.logger.Error("configwatcher: reload callback failed, keeping previous config", "path", w.path, "error", err)
			return
		}
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
	w.logger.Info("configwatcher: reloaded", "path", w.path)
}

// Close stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.watcher.Close()
}
