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

// Package endpoint implements the named outbound destination: availability
// tracking, failure counting and circuit-breaking around a protocol-specific
// Sender.
package endpoint

import "github.com/synapse-go/mediation-core/internal/message"

// Sender performs the protocol-specific half of a send: given a request
// message, produce a response or fail. Implementations are transport
// adapters (HTTP client, JMS producer, mail sender, VFS writer, FIX
// session) and hold no availability state themselves — that's Endpoint's
// job.
type Sender interface {
	Send(msg *message.Message) (*message.Message, error)
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(msg *message.Message) (*message.Message, error)

func (f SenderFunc) Send(msg *message.Message) (*message.Message, error) { return f(msg) }
