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

// Package message defines the neutral envelope that flows through the
// mediation pipeline: a Message with headers, scoped properties, and a
// byte payload, independent of the transport or content family that
// produced it.
package message

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Direction indicates whether a Message is an inbound request or an
// outbound/returned response.
type Direction int

const (
	Request Direction = iota
	Response
)

func (d Direction) String() string {
	if d == Response {
		return "RESPONSE"
	}
	return "REQUEST"
}

// Well-known property keys reserved by the core.
const (
	PropStopFlow        = "STOP_FLOW"
	PropOriginalMessage  = "ORIGINAL_MESSAGE"
	PropDefaultEndpoint  = "DEFAULT_ENDPOINT"
	PropHTTPStatusCode   = "http.status.code"
	PropHTTPMethod       = "http.method"
	PropHTTPURI          = "http.uri"
	PropMailSubject      = "mail.subject"
	PropMailFrom         = "mail.from"
	PropMailAttachments  = "mail.attachments"
	PropJMSReplyTo       = "JMS_REPLY_TO"
	PropJMSCorrelationID = "JMS_CORRELATION_ID"
	PropFIXSessionID     = "FIX_SESSION_ID"
)

// ErrEmptyName is returned when a header or property operation is given an
// empty name.
var ErrEmptyName = errors.New("message: name must not be empty")

// Message is the mutable envelope mediators operate on. It is owned by a
// single in-flight request; mediators within one sequence share and mutate
// it in place unless a mediator constructs a replacement (e.g. Send/Call
// reassigning the downstream response).
type Message struct {
	ID          string
	Direction   Direction
	ContentType string
	Payload     []byte
	Headers     *Headers
	Properties  map[string]interface{}
}

// New creates a Message with a freshly assigned, non-empty id.
func New(direction Direction) *Message {
	return &Message{
		ID:         uuid.NewString(),
		Direction:  direction,
		Headers:    NewHeaders(),
		Properties: make(map[string]interface{}),
	}
}

// SetProperty stores value under name. An empty name is InvalidArgument.
func (m *Message) SetProperty(name string, value interface{}) error {
	if name == "" {
		return fmt.Errorf("%w: property", ErrEmptyName)
	}
	m.Properties[name] = value
	return nil
}

// Property returns the value stored under name and whether it was present.
func (m *Message) Property(name string) (interface{}, bool) {
	v, ok := m.Properties[name]
	return v, ok
}

// RemoveProperty deletes name from the property map outright, rather than
// setting it to nil.
func (m *Message) RemoveProperty(name string) {
	delete(m.Properties, name)
}

// StopFlow reports whether STOP_FLOW has been set truthily.
func (m *Message) StopFlow() bool {
	v, ok := m.Properties[PropStopFlow]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// SetStopFlow sets or clears STOP_FLOW.
func (m *Message) SetStopFlow(stop bool) {
	m.Properties[PropStopFlow] = stop
}

// Clone returns a deep, independent copy: byte-exact payload, header order
// preserved, properties shallow-copied by key (values themselves are
// treated as opaque and not deep-copied).
func (m *Message) Clone() *Message {
	clone := &Message{
		ID:          m.ID,
		Direction:   m.Direction,
		ContentType: m.ContentType,
		Headers:     m.Headers.Clone(),
		Properties:  make(map[string]interface{}, len(m.Properties)),
	}
	if m.Payload != nil {
		clone.Payload = make([]byte, len(m.Payload))
		copy(clone.Payload, m.Payload)
	}
	for k, v := range m.Properties {
		clone.Properties[k] = v
	}
	return clone
}
