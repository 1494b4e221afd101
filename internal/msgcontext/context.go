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

// Package msgcontext implements MessageContext: a Message wrapped with
// scoped properties, attachments, fault state and a parent/children
// relation for fan-out.
//
// A Context never points directly at another Context with a pointer in
// each direction; every context lives in an Arena (a flat, append-only
// slice) and refers to its parent/children by arena index instead. This
// keeps ownership unambiguous and avoids a reference cycle between parent
// and child. The arena is the owner; closing the root releases every
// context it allocated.
package msgcontext

import (
	"sync"
	"time"

	"github.com/synapse-go/mediation-core/internal/message"
)

// Scope identifies one of the four property scopes a MessageContext keeps.
type Scope int

const (
	ScopeDefault Scope = iota
	ScopeTransport
	ScopeAxis2
	ScopeOperation
	scopeCount
)

// Fault captures the fault state of a context: whether mediation is
// currently in a faulted mode, the triggering cause, and a protocol-level
// code/reason pair a transport adapter can surface.
type Fault struct {
	Triggered bool
	Cause     error
	Code      string
	Reason    string
}

const noParent = -1

// Arena owns a flat, append-only list of contexts. Indices into it never
// change, so parent/child links are stable across appends.
type Arena struct {
	mu       sync.Mutex
	contexts []*Context
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewRoot allocates a new root context (no parent) wrapping msg.
func (a *Arena) NewRoot(msg *message.Message) *Context {
	return a.alloc(msg, noParent)
}

func (a *Arena) alloc(msg *message.Message, parent int) *Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := &Context{
		arena:       a,
		index:       len(a.contexts),
		parent:      parent,
		Message:     msg,
		Attachments: make(map[string][]byte),
		CreatedAt:   timeNow(),
	}
	for i := range c.scopes {
		c.scopes[i] = make(map[string]interface{})
	}
	a.contexts = append(a.contexts, c)
	if parent != noParent {
		p := a.contexts[parent]
		p.children = append(p.children, c.index)
	}
	return c
}

// timeNow is a seam so tests can be deterministic if ever needed; defaults
// to wall-clock time.
var timeNow = time.Now

// Context wraps a Message with the four property scopes, attachments, fault
// state, creation timestamp, and a parent/children relation resolved
// through its owning Arena.
type Context struct {
	arena   *Arena
	index   int
	parent  int
	children []int

	Message     *message.Message
	scopes      [scopeCount]map[string]interface{}
	Attachments map[string][]byte
	Fault       Fault
	CreatedAt   time.Time
	closed      bool
}

// SetProperty writes name->value into the given scope.
func (c *Context) SetProperty(scope Scope, name string, value interface{}) {
	c.scopes[scope][name] = value
}

// Property reads name from the given scope.
func (c *Context) Property(scope Scope, name string) (interface{}, bool) {
	v, ok := c.scopes[scope][name]
	return v, ok
}

// RemoveProperty deletes name from the given scope.
func (c *Context) RemoveProperty(scope Scope, name string) {
	delete(c.scopes[scope], name)
}

// SetFault marks the context as faulted with the given cause/code/reason.
func (c *Context) SetFault(cause error, code, reason string) {
	c.Fault = Fault{Triggered: true, Cause: cause, Code: code, Reason: reason}
}

// ClearFault resets the fault state to non-faulted.
func (c *Context) ClearFault() {
	c.Fault = Fault{}
}

// NewChild allocates a new context as a child of c, wrapping childMsg. Used
// for fan-out (e.g. a splitter-style mediator, or parallel Call branches).
func (c *Context) NewChild(childMsg *message.Message) *Context {
	return c.arena.alloc(childMsg, c.index)
}

// Parent returns c's parent context, if any.
func (c *Context) Parent() (*Context, bool) {
	if c.parent == noParent {
		return nil, false
	}
	return c.arena.contexts[c.parent], true
}

// Children returns c's child contexts in creation order.
func (c *Context) Children() []*Context {
	out := make([]*Context, len(c.children))
	for i, idx := range c.children {
		out[i] = c.arena.contexts[idx]
	}
	return out
}

// IsRoot reports whether c has no parent.
func (c *Context) IsRoot() bool {
	return c.parent == noParent
}

// Close releases c's attachments and clears its message reference. If c is
// the root of its arena, Close releases every context the arena holds
// (the arena owns them all; a root closing ends the request).
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.Attachments = nil
	c.Message = nil

	if c.IsRoot() {
		c.arena.mu.Lock()
		defer c.arena.mu.Unlock()
		for _, ctx := range c.arena.contexts {
			if ctx == c {
				continue
			}
			ctx.closed = true
			ctx.Attachments = nil
			ctx.Message = nil
		}
	}
}

// Closed reports whether Close has been called on c (directly, or via its
// root).
func (c *Context) Closed() bool {
	return c.closed
}
