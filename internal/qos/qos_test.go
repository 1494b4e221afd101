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
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapse-go/mediation-core/internal/message"
)

func TestRateLimitGateAllowsWithinBurst(t *testing.T) {
	g := NewRateLimitGate(1000, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Acquire(context.Background(), message.New(message.Request)))
	}
}

func TestRateLimitGateRespectsCancelledContext(t *testing.T) {
	g := NewRateLimitGate(0.001, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := g.Acquire(ctx, message.New(message.Request))
	require.Error(t, err)
}

func TestAuthGateRejectsMissingToken(t *testing.T) {
	g := NewAuthGate(func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	err := g.Acquire(context.Background(), message.New(message.Request))
	require.Error(t, err)
}

func TestAuthGateAcceptsValidToken(t *testing.T) {
	secret := []byte("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "svc"})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	g := NewAuthGate(func(*jwt.Token) (interface{}, error) { return secret, nil })
	msg := message.New(message.Request)
	require.NoError(t, msg.SetProperty(PropAuthToken, signed))
	require.NoError(t, g.Acquire(context.Background(), msg))
}

func TestAuthGateRejectsTamperedToken(t *testing.T) {
	g := NewAuthGate(func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	msg := message.New(message.Request)
	require.NoError(t, msg.SetProperty(PropAuthToken, "not-a-jwt"))
	err := g.Acquire(context.Background(), msg)
	require.Error(t, err)
}

func byMethodAndURI(msg *message.Message) (string, bool) {
	method, ok := msg.Property(message.PropHTTPMethod)
	if !ok {
		return "", false
	}
	uri, ok := msg.Property(message.PropHTTPURI)
	if !ok {
		return "", false
	}
	return method.(string) + " " + uri.(string), true
}

func TestCacheGateStoreAndLookup(t *testing.T) {
	c := NewCacheGate(byMethodAndURI, time.Minute)
	req := message.New(message.Request)
	require.NoError(t, req.SetProperty(message.PropHTTPMethod, "GET"))
	require.NoError(t, req.SetProperty(message.PropHTTPURI, "/status"))
	resp := message.New(message.Response)

	_, ok := c.Lookup(req)
	assert.False(t, ok)

	c.Store(req, resp)
	got, ok := c.Lookup(req)
	require.True(t, ok)
	assert.Same(t, resp, got)
}

func TestCacheGateExpiresEntries(t *testing.T) {
	c := NewCacheGate(byMethodAndURI, 5*time.Millisecond)
	req := message.New(message.Request)
	require.NoError(t, req.SetProperty(message.PropHTTPMethod, "GET"))
	require.NoError(t, req.SetProperty(message.PropHTTPURI, "/status"))
	c.Store(req, message.New(message.Response))

	time.Sleep(15 * time.Millisecond)
	_, ok := c.Lookup(req)
	assert.False(t, ok)
}

func TestCacheGateSkipsUncacheableMessages(t *testing.T) {
	c := NewCacheGate(byMethodAndURI, time.Minute)
	req := message.New(message.Request)
	c.Store(req, message.New(message.Response))
	_, ok := c.Lookup(req)
	assert.False(t, ok)
}
