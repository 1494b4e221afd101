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

// Endpoint is the narrow capability Send and Call need from a named
// outbound destination: deliver msg and return the response (or an error
// the endpoint itself classifies, e.g. NotAvailable after the circuit
// trips). Satisfied by *endpoint.Endpoint.
type Endpoint interface {
	Send(msg *message.Message) (*message.Message, error)
}

// PropEndpointRef is the message property key an Endpoint value may be
// attached under (step 3 of resolveEndpoint). The registry lookup in step 2
// uses the mediator's own endpointRef value, not this key.
const PropEndpointRef = "endpointRef"

// EndpointLookup resolves a registered Endpoint by name. Satisfied by
// *registry.Registry.
type EndpointLookup interface {
	Endpoint(name string) (Endpoint, bool)
}

// resolveEndpoint implements the shared Send/Call resolution order:
//  1. direct, if non-nil;
//  2. named lookup in the registry by endpointRef;
//  3. a message property named endpointRef holding an Endpoint value;
//  4. the message property DEFAULT_ENDPOINT;
//  5. NotFound.
func resolveEndpoint(msg *message.Message, mediatorName string, direct Endpoint, endpointRef string, lookup EndpointLookup) (Endpoint, error) {
	if direct != nil {
		return direct, nil
	}
	if endpointRef != "" && lookup != nil {
		if ep, ok := lookup.Endpoint(endpointRef); ok {
			return ep, nil
		}
	}
	if v, ok := msg.Property(PropEndpointRef); ok {
		if ep, ok := v.(Endpoint); ok {
			return ep, nil
		}
	}
	if v, ok := msg.Property(message.PropDefaultEndpoint); ok {
		if ep, ok := v.(Endpoint); ok {
			return ep, nil
		}
	}
	return nil, mediator.NewError(mediator.KindNotFound, mediatorName, "no endpoint could be resolved", nil)
}
