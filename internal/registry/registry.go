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

// Package registry holds the named, hot-reloadable stores a running
// mediation core needs: sequences, endpoints, transport configurations and
// arbitrary artifacts. Writes are serialized against each other; readers
// never observe a torn value for a single key.
package registry

import (
	"log/slog"
	"sync"

	"github.com/synapse-go/mediation-core/internal/endpoint"
	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/mediators"
)

// EventKind identifies what changed in a Registry.
type EventKind string

const (
	EventSequenceSet    EventKind = "sequence.set"
	EventSequenceRemove EventKind = "sequence.remove"
	EventEndpointSet    EventKind = "endpoint.set"
	EventEndpointRemove EventKind = "endpoint.remove"
	EventArtifactSet    EventKind = "artifact.set"
	EventArtifactRemove EventKind = "artifact.remove"
)

// Event describes a single registry mutation, delivered to listeners after
// the write lock has been released.
type Event struct {
	Kind EventKind
	Name string
}

// ChangeListener is notified of registry mutations. A listener that panics
// is isolated: Registry recovers and continues notifying the rest.
type ChangeListener func(Event)

// Registry is the central store for sequences, endpoints, transport
// configuration and free-form artifacts (e.g. a parsed OpenAPI document, a
// compiled XSLT stylesheet).
type Registry struct {
	mu sync.RWMutex

	sequences  map[string]*mediator.Sequence
	endpoints  map[string]*endpoint.Endpoint
	transports map[string]interface{}
	artifacts  map[string]interface{}

	listenersMu sync.Mutex
	listeners   []ChangeListener

	logger *slog.Logger
}

// New returns an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sequences:  make(map[string]*mediator.Sequence),
		endpoints:  make(map[string]*endpoint.Endpoint),
		transports: make(map[string]interface{}),
		artifacts:  make(map[string]interface{}),
		logger:     logger,
	}
}

// Subscribe registers l to be called after every future mutation, except
// SetTransport, which notifies no listener.
func (r *Registry) Subscribe(l ChangeListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Registry) notify(ev Event) {
	r.listenersMu.Lock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.listenersMu.Unlock()

	for _, l := range listeners {
		r.safeNotify(l, ev)
	}
}

func (r *Registry) safeNotify(l ChangeListener, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("registry listener panicked", "event", ev.Kind, "name", ev.Name, "recovered", rec)
		}
	}()
	l(ev)
}

// SetSequence installs or replaces a sequence under name.
func (r *Registry) SetSequence(name string, seq *mediator.Sequence) {
	r.mu.Lock()
	r.sequences[name] = seq
	r.mu.Unlock()
	r.notify(Event{Kind: EventSequenceSet, Name: name})
}

// Sequence looks up a sequence by name. Satisfies mediators.SequenceLookup.
func (r *Registry) Sequence(name string) (*mediator.Sequence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seq, ok := r.sequences[name]
	return seq, ok
}

// RemoveSequence deletes a sequence by name.
func (r *Registry) RemoveSequence(name string) {
	r.mu.Lock()
	delete(r.sequences, name)
	r.mu.Unlock()
	r.notify(Event{Kind: EventSequenceRemove, Name: name})
}

// Sequences returns a snapshot of every registered sequence name.
func (r *Registry) Sequences() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sequences))
	for name := range r.sequences {
		names = append(names, name)
	}
	return names
}

// SetEndpoint installs or replaces an endpoint under name.
func (r *Registry) SetEndpoint(name string, ep *endpoint.Endpoint) {
	r.mu.Lock()
	r.endpoints[name] = ep
	r.mu.Unlock()
	r.notify(Event{Kind: EventEndpointSet, Name: name})
}

// Endpoint looks up an endpoint by name, returning it as the narrow
// mediators.Endpoint capability. Satisfies mediators.EndpointLookup.
func (r *Registry) Endpoint(name string) (mediators.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[name]
	if !ok {
		return nil, false
	}
	return ep, true
}

// RemoveEndpoint deletes an endpoint by name.
func (r *Registry) RemoveEndpoint(name string) {
	r.mu.Lock()
	delete(r.endpoints, name)
	r.mu.Unlock()
	r.notify(Event{Kind: EventEndpointRemove, Name: name})
}

// Endpoints returns a snapshot of every registered endpoint name.
func (r *Registry) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	return names
}

// EndpointByName looks up the concrete *endpoint.Endpoint, e.g. for
// operational introspection (Reset, FailureCount).
func (r *Registry) EndpointByName(name string) (*endpoint.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[name]
	return ep, ok
}

// SetTransport installs or replaces a transport configuration under name.
func (r *Registry) SetTransport(name string, cfg interface{}) {
	r.mu.Lock()
	r.transports[name] = cfg
	r.mu.Unlock()
}

// Transport looks up a transport configuration by name.
func (r *Registry) Transport(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transports[name]
	return t, ok
}

// SetArtifact installs or replaces an arbitrary artifact under name (e.g. a
// parsed OpenAPI document, a compiled stylesheet).
func (r *Registry) SetArtifact(name string, value interface{}) {
	r.mu.Lock()
	r.artifacts[name] = value
	r.mu.Unlock()
	r.notify(Event{Kind: EventArtifactSet, Name: name})
}

// Artifact looks up an artifact by name.
func (r *Registry) Artifact(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.artifacts[name]
	return v, ok
}

// RemoveArtifact deletes an artifact by name.
func (r *Registry) RemoveArtifact(name string) {
	r.mu.Lock()
	delete(r.artifacts, name)
	r.mu.Unlock()
	r.notify(Event{Kind: EventArtifactRemove, Name: name})
}
