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

package transport

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Manager keeps the registered Listeners and Senders in registration order
// and fans lifecycle calls out across all of them in that order. They are
// held in lists, not keyed by name; Senders are found by CanHandle.
type Manager struct {
	mu        sync.Mutex
	listeners []Listener
	senders   []Sender
	logger    *slog.Logger
}

// NewManager returns an empty Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// RegisterListener appends l to the managed set.
func (m *Manager) RegisterListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// RegisterSender appends s to the managed set.
func (m *Manager) RegisterSender(s Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.senders = append(m.senders, s)
}

// InitializeListeners calls Init on every listener in registration order,
// stopping at the first failure.
func (m *Manager) InitializeListeners() error {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		if err := l.Init(); err != nil {
			return fmt.Errorf("transport: init listener %s: %w", l.Name(), err)
		}
	}
	return nil
}

// StartListeners calls Start on every listener in registration order,
// stopping at the first failure. Already-started listeners are left
// running; callers that want a clean rollback should call StopListeners.
func (m *Manager) StartListeners() error {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		if err := l.Start(); err != nil {
			return fmt.Errorf("transport: start listener %s: %w", l.Name(), err)
		}
	}
	return nil
}

// StopListeners calls Stop on every listener in registration order. Unlike
// Start, Stop attempts every listener even if one fails; all failures are
// collected and returned together.
func (m *Manager) StopListeners() error {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	var errs []string
	for _, l := range listeners {
		if err := l.Stop(); err != nil {
			m.logger.Error("listener stop failed", "listener", l.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", l.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("transport: stop failures: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SenderFor returns the first registered Sender whose CanHandle matches
// endpointURI, in registration order.
func (m *Manager) SenderFor(endpointURI string) (Sender, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.senders {
		if s.CanHandle(endpointURI) {
			return s, true
		}
	}
	return nil, false
}

// Listeners returns a snapshot of the registered listeners.
func (m *Manager) Listeners() []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Listener(nil), m.listeners...)
}
