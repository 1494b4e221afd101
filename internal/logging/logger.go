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

// Package logging builds slog loggers with a per-component minimum level
// and hot-reloadable configuration, handed around explicitly rather than
// fetched from a package-level singleton.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// HandlerConfig selects the slog handler shape: output encoding and
// destination.
type HandlerConfig struct {
	Format     string `koanf:"format"`     // "json" or "text"
	OutputPath string `koanf:"outputPath"` // "stdout", "stderr", or a file path
}

// Build constructs the base slog.Handler described by c: JSON when Format
// is "json", text otherwise. OutputPath "" or "stdout" writes to stdout,
// "stderr" to stderr, and any other value is opened as a file for append.
func (c HandlerConfig) Build() (slog.Handler, error) {
	w, err := c.writer()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(c.Format, "json") {
		return slog.NewJSONHandler(w, nil), nil
	}
	return slog.NewTextHandler(w, nil), nil
}

func (c HandlerConfig) writer() (*os.File, error) {
	switch c.OutputPath {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(c.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}

// LevelHandler wraps a Handler with an Enabled method that filters out
// records below a minimum level, so one base handler can back loggers at
// several different levels.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevelHandler returns a LevelHandler for level wrapping h. Chains of
// LevelHandlers are collapsed to avoid redundant wrapping.
func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.handler
	}
	return &LevelHandler{level: level, handler: h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}

// LevelFromString parses a level name, defaulting to Info for anything
// unrecognized.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Factory builds named component loggers sharing one base handler and a
// per-component level map that can be swapped at runtime by a config
// reload, without any package-level global state.
type Factory struct {
	mu       sync.RWMutex
	handler  slog.Handler
	levels   map[string]string
	fallback slog.Level
}

// NewFactory builds a Factory from a handler config and an initial
// component->level map.
func NewFactory(handlerCfg HandlerConfig, levels map[string]string) (*Factory, error) {
	handler, err := handlerCfg.Build()
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = make(map[string]string)
	}
	return &Factory{handler: handler, levels: levels, fallback: slog.LevelInfo}, nil
}

// Logger returns a *slog.Logger for component, filtered at the level
// configured for it (or the factory's fallback level if unconfigured).
func (f *Factory) Logger(component string) *slog.Logger {
	f.mu.RLock()
	defer f.mu.RUnlock()
	level := f.fallback
	if s, ok := f.levels[component]; ok {
		level = LevelFromString(s)
	}
	return slog.New(NewLevelHandler(level, f.handler))
}

// SetLevels atomically replaces the component->level map. Loggers already
// handed out via Logger are not retroactively updated; callers that need
// live level changes should call Logger again after SetLevels.
func (f *Factory) SetLevels(levels map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = levels
}
