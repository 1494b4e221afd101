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

package msgcontext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/message"
)

func TestScopesAreIndependent(t *testing.T) {
	arena := NewArena()
	ctx := arena.NewRoot(message.New(message.Request))

	ctx.SetProperty(ScopeDefault, "k", "default-value")
	ctx.SetProperty(ScopeTransport, "k", "transport-value")

	v, ok := ctx.Property(ScopeDefault, "k")
	require.True(t, ok)
	assert.Equal(t, "default-value", v)

	v, ok = ctx.Property(ScopeTransport, "k")
	require.True(t, ok)
	assert.Equal(t, "transport-value", v)

	_, ok = ctx.Property(ScopeAxis2, "k")
	assert.False(t, ok)
}

func TestFaultState(t *testing.T) {
	arena := NewArena()
	ctx := arena.NewRoot(message.New(message.Request))
	assert.False(t, ctx.Fault.Triggered)

	cause := errors.New("boom")
	ctx.SetFault(cause, "500", "internal error")
	assert.True(t, ctx.Fault.Triggered)
	assert.Equal(t, cause, ctx.Fault.Cause)

	ctx.ClearFault()
	assert.False(t, ctx.Fault.Triggered)
}

func TestParentChildRelationViaArenaIndex(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot(message.New(message.Request))
	child := root.NewChild(message.New(message.Request))

	parent, ok := child.Parent()
	require.True(t, ok)
	assert.Same(t, root, parent)

	children := root.Children()
	require.Len(t, children, 1)
	assert.Same(t, child, children[0])

	_, ok = root.Parent()
	assert.False(t, ok)
}

func TestCloseRootReleasesChildren(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot(message.New(message.Request))
	child := root.NewChild(message.New(message.Request))

	root.Close()

	assert.True(t, root.Closed())
	assert.True(t, child.Closed())
	assert.Nil(t, root.Message)
	assert.Nil(t, child.Message)
}

func TestCloseIsIdempotent(t *testing.T) {
	arena := NewArena()
	root := arena.NewRoot(message.New(message.Request))
	root.Close()
	assert.NotPanics(t, func() { root.Close() })
}
