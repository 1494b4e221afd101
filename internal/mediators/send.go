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

// SendMediator is a terminal mediator: it resolves an endpoint, delivers
// msg, marks the response STOP_FLOW and returns it. No further mediator in
// the enclosing sequence runs after a successful Send.
type SendMediator struct {
	MediatorName string
	Endpoint     Endpoint // direct reference, takes priority if set
	EndpointRef  string
	Lookup       EndpointLookup
}

func (sm *SendMediator) Name() string {
	if sm.MediatorName != "" {
		return sm.MediatorName
	}
	return "send"
}

func (sm *SendMediator) Mediate(msg *message.Message) (*message.Message, error) {
	ep, err := resolveEndpoint(msg, sm.Name(), sm.Endpoint, sm.EndpointRef, sm.Lookup)
	if err != nil {
		return msg, err
	}
	resp, err := ep.Send(msg)
	if err != nil {
		return msg, mediator.Wrap(sm.Name(), err)
	}
	resp.SetStopFlow(true)
	return resp, nil
}
