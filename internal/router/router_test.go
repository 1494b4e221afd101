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

package router

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

type recordingEngine struct {
	lastSequence string
	resp         *message.Message
	err          error
}

func (r *recordingEngine) Mediate(ctx context.Context, msg *message.Message, sequenceName string) (*message.Message, error) {
	r.lastSequence = sequenceName
	if r.err != nil {
		return nil, r.err
	}
	if r.resp != nil {
		return r.resp, nil
	}
	return msg, nil
}

func TestResolveFirstMatchWins(t *testing.T) {
	r := &Router{
		Rules: []Rule{
			{Pattern: regexp.MustCompile(`^/billing/`), SequenceName: "billing"},
			{Pattern: regexp.MustCompile(`^/billing/refund`), SequenceName: "refund"},
		},
		DefaultSequence: "default",
	}
	assert.Equal(t, "billing", r.Resolve("/billing/refund"))
}

func TestResolveFallsBackToDefaultOnNoMatch(t *testing.T) {
	r := &Router{
		Rules:           []Rule{{Pattern: regexp.MustCompile(`^/billing/`), SequenceName: "billing"}},
		DefaultSequence: "default",
	}
	assert.Equal(t, "default", r.Resolve("/other"))
}

func TestResolveEmptyRuleSetFallsBackToDefault(t *testing.T) {
	r := &Router{DefaultSequence: "default"}
	assert.Equal(t, "default", r.Resolve("/anything"))
}

func TestRouteDispatchesResolvedSequenceToEngine(t *testing.T) {
	eng := &recordingEngine{}
	r := &Router{
		Rules:           []Rule{{Pattern: regexp.MustCompile(`^/billing/`), SequenceName: "billing"}},
		DefaultSequence: "default",
		Engine:          eng,
	}
	msg := message.New(message.Request)
	require.NoError(t, msg.SetProperty(message.PropHTTPURI, "/billing/invoice"))

	_, err := r.Route(msg)
	require.NoError(t, err)
	assert.Equal(t, "billing", eng.lastSequence)
}

func TestRouteBuildsErrorReplyWhenConfigured(t *testing.T) {
	eng := &recordingEngine{err: mediator.NewError(mediator.KindNotFound, "x", "no sequence", nil)}
	r := &Router{
		DefaultSequence: "default",
		Engine:          eng,
		ErrorReplyBuilder: func(err error) *message.Message {
			reply := message.New(message.Response)
			_ = reply.SetProperty(message.PropHTTPStatusCode, StatusForError(err))
			return reply
		},
	}
	out, err := r.Route(message.New(message.Request))
	require.NoError(t, err)
	v, _ := out.Property(message.PropHTTPStatusCode)
	assert.Equal(t, 404, v)
}

func TestRoutePropagatesErrorWithoutBuilder(t *testing.T) {
	eng := &recordingEngine{err: mediator.NewError(mediator.KindInternal, "x", "boom", nil)}
	r := &Router{DefaultSequence: "default", Engine: eng}
	_, err := r.Route(message.New(message.Request))
	require.Error(t, err)
}

func TestStatusForErrorMapping(t *testing.T) {
	assert.Equal(t, 404, StatusForError(mediator.NewError(mediator.KindNotFound, "x", "d", nil)))
	assert.Equal(t, 503, StatusForError(mediator.NewError(mediator.KindNotAvailable, "x", "d", nil)))
	assert.Equal(t, 500, StatusForError(mediator.NewError(mediator.KindInternal, "x", "d", nil)))
}
