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
	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// CallMediator is like SendMediator but non-terminal: it never sets
// STOP_FLOW, so the enclosing sequence keeps running afterward.
//
// In blocking mode it waits for ep.Send, stamps the pre-call message under
// ORIGINAL_MESSAGE, and returns the response. In non-blocking mode it
// dispatches the send on its own goroutine and returns the original
// message unchanged, immediately.
type CallMediator struct {
	MediatorName string
	Endpoint     Endpoint
	EndpointRef  string
	Lookup       EndpointLookup
	Blocking     bool

	// OnAsyncError, if set, receives errors from a non-blocking send that
	// would otherwise be discarded once the mediator has already returned.
	OnAsyncError func(err error)
}

func (cm *CallMediator) Name() string {
	if cm.MediatorName != "" {
		return cm.MediatorName
	}
	return "call"
}

func (cm *CallMediator) Mediate(msg *message.Message) (*message.Message, error) {
	ep, err := resolveEndpoint(msg, cm.Name(), cm.Endpoint, cm.EndpointRef, cm.Lookup)
	if err != nil {
		return msg, err
	}

	if !cm.Blocking {
		go func() {
			if _, sendErr := ep.Send(msg); sendErr != nil && cm.OnAsyncError != nil {
				cm.OnAsyncError(sendErr)
			}
		}()
		return msg, nil
	}

	original := msg
	resp, err := ep.Send(msg)
	if err != nil {
		return msg, mediator.Wrap(cm.Name(), err)
	}
	if setErr := resp.SetProperty(message.PropOriginalMessage, original); setErr != nil {
		return resp, setErr
	}
	return resp, nil
}
