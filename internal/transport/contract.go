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

// Package transport defines the contract every inbound/outbound adapter
// implements (Listener, Sender) and the Manager that fans lifecycle calls
// out across every registered instance.
package transport

import "github.com/synapse-go/mediation-core/internal/message"

// MessageCallback is invoked by a Listener for every inbound message.
// Returning a non-nil message asks the listener to deliver it as a reply
// over the same logical channel; nil means one-way, no reply.
type MessageCallback func(msg *message.Message) (*message.Message, error)

// Listener pushes inbound messages into the mediation pipeline via a
// registered MessageCallback.
type Listener interface {
	Name() string
	Init() error
	Start() error
	Stop() error
	IsRunning() bool
	SetMessageCallback(cb MessageCallback)
}

// Sender dispatches outbound messages to a concrete endpoint URI. Senders
// are matched to a URI by scheme/prefix; the first registered Sender whose
// CanHandle returns true wins, with registration order as the tie-break.
type Sender interface {
	Name() string
	Init() error
	Send(msg *message.Message, endpointURI string) (*message.Message, error)
	CanHandle(endpointURI string) bool
	Close() error
}
