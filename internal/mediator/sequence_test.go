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

package mediator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/message"
)

func setProperty(name string, value interface{}) Mediator {
	return &Func{
		MediatorName: "set-" + name,
		Fn: func(msg *message.Message) (*message.Message, error) {
			_ = msg.SetProperty(name, value)
			return msg, nil
		},
	}
}

func TestApplyPreservesMessageID(t *testing.T) {
	seq := &Sequence{Name: "s", Mediators: []Mediator{setProperty("a", 1)}}
	msg := message.New(message.Request)
	out, err := seq.Apply(msg)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, out.ID)
}

func TestApplyEmptySequenceReturnsInputUnchanged(t *testing.T) {
	seq := &Sequence{Name: "empty"}
	msg := message.New(message.Request)
	msg.Payload = []byte("x")
	out, err := seq.Apply(msg)
	require.NoError(t, err)
	assert.Same(t, msg, out)
}

func TestApplyStopFlowSkipsRemainingMediators(t *testing.T) {
	var ranC bool
	stopper := &Func{
		MediatorName: "stopper",
		Fn: func(msg *message.Message) (*message.Message, error) {
			msg.SetStopFlow(true)
			return msg, nil
		},
	}
	c := &Func{
		MediatorName: "c",
		Fn: func(msg *message.Message) (*message.Message, error) {
			ranC = true
			return msg, nil
		},
	}
	seq := &Sequence{Name: "s", Mediators: []Mediator{setProperty("a", 1), stopper, c}}
	msg := message.New(message.Request)
	out, err := seq.Apply(msg)
	require.NoError(t, err)
	assert.True(t, out.StopFlow())
	assert.False(t, ranC, "mediator after STOP_FLOW must not run")
}

func TestApplyOrderIsStrict(t *testing.T) {
	var order []string
	record := func(name string) Mediator {
		return &Func{MediatorName: name, Fn: func(msg *message.Message) (*message.Message, error) {
			order = append(order, name)
			return msg, nil
		}}
	}
	seq := &Sequence{Mediators: []Mediator{record("a"), record("b"), record("c")}}
	_, err := seq.Apply(message.New(message.Request))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestApplyOnTemplateFails(t *testing.T) {
	seq := &Sequence{Name: "tpl", Template: true}
	_, err := seq.Apply(message.New(message.Request))
	require.Error(t, err)
	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, KindConfig, me.Kind)
}

func TestApplyPropagatesMediatorError(t *testing.T) {
	boom := &Func{MediatorName: "boom", Fn: func(msg *message.Message) (*message.Message, error) {
		return msg, NewError(KindValidation, "boom", "missing field", nil)
	}}
	seq := &Sequence{Mediators: []Mediator{boom}}
	_, err := seq.Apply(message.New(message.Request))
	require.Error(t, err)
}

type recordingMediator struct {
	value string
}

func (r *recordingMediator) Name() string { return "recording" }
func (r *recordingMediator) Mediate(msg *message.Message) (*message.Message, error) {
	_ = msg.SetProperty("value", r.value)
	return msg, nil
}

func (r *recordingMediator) InstantiateParams(params []string) (Mediator, error) {
	v, err := SubstituteParam(r.value, params)
	if err != nil {
		return nil, err
	}
	return &recordingMediator{value: v}, nil
}

func TestInstantiateSubstitutesPositionalParams(t *testing.T) {
	tpl := &Sequence{Name: "T", Template: true, Mediators: []Mediator{&recordingMediator{value: "$param.1"}}}

	inst, err := tpl.Instantiate([]string{"X"})
	require.NoError(t, err)
	assert.False(t, inst.Template)

	out, err := inst.Apply(message.New(message.Request))
	require.NoError(t, err)
	v, ok := out.Property("value")
	require.True(t, ok)
	assert.Equal(t, "X", v)
}

func TestInstantiateIsPureFunctionOfInputs(t *testing.T) {
	tpl := &Sequence{Name: "T", Template: true, Mediators: []Mediator{&recordingMediator{value: "$param.1"}}}

	a, err := tpl.Instantiate([]string{"X"})
	require.NoError(t, err)
	b, err := tpl.Instantiate([]string{"X"})
	require.NoError(t, err)

	ma := a.Mediators[0].(*recordingMediator)
	mb := b.Mediators[0].(*recordingMediator)
	assert.Equal(t, ma.value, mb.value)
}

func TestInstantiateFailsWhenParamIndexExceedsCount(t *testing.T) {
	tpl := &Sequence{Name: "T", Template: true, Mediators: []Mediator{&recordingMediator{value: "$param.2"}}}
	_, err := tpl.Instantiate([]string{"only-one"})
	require.Error(t, err)
	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, KindConfig, me.Kind)
}

func TestInstantiateLeavesNonMatchingStringsUntouched(t *testing.T) {
	tpl := &Sequence{Template: true, Mediators: []Mediator{&recordingMediator{value: "literal"}}}
	inst, err := tpl.Instantiate(nil)
	require.NoError(t, err)
	assert.Equal(t, "literal", inst.Mediators[0].(*recordingMediator).value)
}
