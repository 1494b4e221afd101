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

package qos

import (
	"context"
	"sync"
	"time"

	"github.com/synapse-go/mediation-core/internal/message"
)

// CacheKeyFunc derives a cache key from a message, e.g. method+URI for
// HTTP-shaped traffic.
type CacheKeyFunc func(msg *message.Message) (string, bool)

type cacheEntry struct {
	response  *message.Message
	expiresAt time.Time
}

// CacheGate short-circuits mediation by answering from a prior response
// when one is cached and unexpired. It never performs the full send.
// Engine.Mediate does not call Lookup or Store; a caller that wants
// caching calls CacheGate.Lookup before Engine.Mediate and CacheGate.Store
// after a response comes back.
//
// This is an in-process cache, not a distributed one: a single ESB
// instance only (see Non-goals: no distributed coordination across
// instances). A deployment wanting a shared cache across instances would
// swap this implementation for one backed by an external store; nothing
// in the core depends on this being in-memory.
type CacheGate struct {
	KeyFunc CacheKeyFunc
	TTL     time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCacheGate builds a CacheGate with the given key function and entry
// time-to-live.
func NewCacheGate(keyFunc CacheKeyFunc, ttl time.Duration) *CacheGate {
	return &CacheGate{KeyFunc: keyFunc, TTL: ttl, entries: make(map[string]cacheEntry)}
}

// Acquire is a no-op gate for CacheGate: lookups and stores happen via
// Lookup/Store, not the Acquire path, since a cache hit needs to *replace*
// the sequence run rather than merely gate entry to it.
func (g *CacheGate) Acquire(context.Context, *message.Message) error { return nil }

// Lookup returns a cached response for msg, if one exists and has not
// expired.
func (g *CacheGate) Lookup(msg *message.Message) (*message.Message, bool) {
	key, ok := g.KeyFunc(msg)
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(g.entries, key)
		return nil, false
	}
	return entry.response, true
}

// Store records resp as the cached response for req.
func (g *CacheGate) Store(req, resp *message.Message) {
	key, ok := g.KeyFunc(req)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[key] = cacheEntry{response: resp, expiresAt: time.Now().Add(g.TTL)}
}
