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

package mediators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

func markerSequence(name, value string) *mediator.Sequence {
	return &mediator.Sequence{
		Name: name,
		Mediators: []mediator.Mediator{
			&mediator.Func{MediatorName: name, Fn: func(msg *message.Message) (*message.Message, error) {
				_ = msg.SetProperty("branch", value)
				return msg, nil
			}},
		},
	}
}

func TestFilterMediatorRunsThenOnMatch(t *testing.T) {
	fm := &FilterMediator{
		Value: HeaderSource("X-Env"),
		Match: ExactMatch("prod"),
		Then:  markerSequence("then", "then"),
		Else:  markerSequence("else", "else"),
	}
	msg := message.New(message.Request)
	msg.Headers.Set("X-Env", "prod")
	out, err := fm.Mediate(msg)
	require.NoError(t, err)
	v, _ := out.Property("branch")
	assert.Equal(t, "then", v)
}

func TestFilterMediatorRunsElseOnMismatch(t *testing.T) {
	fm := &FilterMediator{
		Value: HeaderSource("X-Env"),
		Match: ExactMatch("prod"),
		Then:  markerSequence("then", "then"),
		Else:  markerSequence("else", "else"),
	}
	msg := message.New(message.Request)
	msg.Headers.Set("X-Env", "staging")
	out, err := fm.Mediate(msg)
	require.NoError(t, err)
	v, _ := out.Property("branch")
	assert.Equal(t, "else", v)
}

func TestFilterMediatorNilBranchPassesThrough(t *testing.T) {
	fm := &FilterMediator{Value: Literal("x"), Match: ExactMatch("y")}
	msg := message.New(message.Request)
	out, err := fm.Mediate(msg)
	require.NoError(t, err)
	assert.Same(t, msg, out)
}

func TestFilterMediatorWithNoPredicateRunsElse(t *testing.T) {
	fm := &FilterMediator{
		Then: markerSequence("then", "then"),
		Else: markerSequence("else", "else"),
	}
	out, err := fm.Mediate(message.New(message.Request))
	require.NoError(t, err)
	v, _ := out.Property("branch")
	assert.Equal(t, "else", v)
}

func TestFilterMediatorUnresolvedSourceTreatedAsEmptyString(t *testing.T) {
	fm := &FilterMediator{
		Value: HeaderSource("Missing"),
		Match: ExactMatch(""),
		Then:  markerSequence("then", "then"),
	}
	out, err := fm.Mediate(message.New(message.Request))
	require.NoError(t, err)
	v, ok := out.Property("branch")
	require.True(t, ok)
	assert.Equal(t, "then", v)
}
