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

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
	"github.com/synapse-go/mediation-core/internal/registry"
	"github.com/synapse-go/mediation-core/internal/transport"
)

func setProp(name string, value interface{}) mediator.Mediator {
	return &mediator.Func{MediatorName: "set-" + name, Fn: func(msg *message.Message) (*message.Message, error) {
		_ = msg.SetProperty(name, value)
		return msg, nil
	}}
}

func TestMediateRunsResolvedSequence(t *testing.T) {
	reg := registry.New(nil)
	reg.SetSequence("greet", &mediator.Sequence{Name: "greet", Mediators: []mediator.Mediator{setProp("hit", true)}})
	e := New(reg, transport.NewManager(nil), nil, nil)

	out, err := e.Mediate(context.Background(), message.New(message.Request), "greet")
	require.NoError(t, err)
	v, ok := out.Property("hit")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestMediateUnknownSequenceFailsNotFound(t *testing.T) {
	reg := registry.New(nil)
	e := New(reg, transport.NewManager(nil), nil, nil)
	_, err := e.Mediate(context.Background(), message.New(message.Request), "missing")
	require.Error(t, err)
}

func TestMediateRoutesToOnErrorSequence(t *testing.T) {
	reg := registry.New(nil)
	boom := &mediator.Func{MediatorName: "boom", Fn: func(msg *message.Message) (*message.Message, error) {
		return msg, mediator.NewError(mediator.KindValidation, "boom", "bad input", nil)
	}}
	reg.SetSequence("main", &mediator.Sequence{Name: "main", Mediators: []mediator.Mediator{boom}, OnErrorSequence: "onError"})
	reg.SetSequence("onError", &mediator.Sequence{Name: "onError", Mediators: []mediator.Mediator{setProp("recovered", true)}})
	e := New(reg, transport.NewManager(nil), nil, nil)

	out, err := e.Mediate(context.Background(), message.New(message.Request), "main")
	require.NoError(t, err)
	v, ok := out.Property("recovered")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestMediateWithoutOnErrorSequenceSurfacesError(t *testing.T) {
	reg := registry.New(nil)
	boom := &mediator.Func{MediatorName: "boom", Fn: func(msg *message.Message) (*message.Message, error) {
		return msg, mediator.NewError(mediator.KindValidation, "boom", "bad input", nil)
	}}
	reg.SetSequence("main", &mediator.Sequence{Name: "main", Mediators: []mediator.Mediator{boom}})
	e := New(reg, transport.NewManager(nil), nil, nil)

	_, err := e.Mediate(context.Background(), message.New(message.Request), "main")
	require.Error(t, err)
}

func TestRegisterSequenceRecoversPanickingMediator(t *testing.T) {
	reg := registry.New(nil)
	e := New(reg, transport.NewManager(nil), nil, nil)

	boom := &mediator.Func{MediatorName: "boom", Fn: func(msg *message.Message) (*message.Message, error) {
		panic("kaboom")
	}}
	e.RegisterSequence("main", &mediator.Sequence{Name: "main", Mediators: []mediator.Mediator{boom}})

	_, err := e.Mediate(context.Background(), message.New(message.Request), "main")
	require.Error(t, err)
	var me *mediator.Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, mediator.KindInternal, me.Kind)
}

func TestStopIsIdempotent(t *testing.T) {
	e := New(registry.New(nil), transport.NewManager(nil), nil, nil)
	require.NoError(t, e.Stop())
	require.NoError(t, e.Stop())
}

func TestStartThenStop(t *testing.T) {
	e := New(registry.New(nil), transport.NewManager(nil), nil, nil)
	require.NoError(t, e.Start())
	require.NoError(t, e.Stop())
}
