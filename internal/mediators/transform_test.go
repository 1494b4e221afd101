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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/message"
)

type upperTransformer struct{ err error }

func (u upperTransformer) Transform(payload []byte, contentType string) ([]byte, error) {
	if u.err != nil {
		return nil, u.err
	}
	out := make([]byte, len(payload))
	for i, b := range payload {
		if b >= 'a' && b <= 'z' {
			b -= 32
		}
		out[i] = b
	}
	return out, nil
}

func TestTransformMediatorRewritesPayloadAndContentType(t *testing.T) {
	msg := message.New(message.Request)
	msg.ContentType = "application/xml"
	msg.Payload = []byte("<a>hi</a>")
	tm := &TransformMediator{Transformer: upperTransformer{}}
	out, err := tm.Mediate(msg)
	require.NoError(t, err)
	assert.Equal(t, "<A>HI</A>", string(out.Payload))
	assert.Equal(t, "application/xml", out.ContentType)
}

func TestTransformMediatorStoresIntoTargetProperty(t *testing.T) {
	msg := message.New(message.Request)
	msg.ContentType = "text/xml"
	msg.Payload = []byte("hi")
	tm := &TransformMediator{Transformer: upperTransformer{}, TargetProperty: "transformed"}
	out, err := tm.Mediate(msg)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(out.Payload), "payload untouched when TargetProperty is set")
	v, ok := out.Property("transformed")
	require.True(t, ok)
	assert.Equal(t, []byte("HI"), v)
}

func TestTransformMediatorPassesThroughNonXML(t *testing.T) {
	msg := message.New(message.Request)
	msg.ContentType = "application/json"
	msg.Payload = []byte(`{"a":1}`)
	tm := &TransformMediator{Transformer: upperTransformer{}}
	out, err := tm.Mediate(msg)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out.Payload))
}

func TestTransformMediatorNilTransformerIsIdentity(t *testing.T) {
	msg := message.New(message.Request)
	msg.ContentType = "application/xml"
	msg.Payload = []byte("<a/>")
	tm := &TransformMediator{}
	out, err := tm.Mediate(msg)
	require.NoError(t, err)
	assert.Equal(t, "<a/>", string(out.Payload))
}

func TestTransformMediatorPropagatesTransformerError(t *testing.T) {
	msg := message.New(message.Request)
	msg.ContentType = "application/xml"
	tm := &TransformMediator{Transformer: upperTransformer{err: errors.New("bad xml")}}
	_, err := tm.Mediate(msg)
	require.Error(t, err)
}
