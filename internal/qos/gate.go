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

// Package qos implements thin QosGate policies the engine consults before
// running a sequence: rate limiting, bearer-token authentication, and
// response caching. The concrete policy algorithms (token-bucket math,
// JWT validation, cache eviction) live here; the engine only ever sees the
// QosGate contract.
package qos

import (
	"context"

	"github.com/synapse-go/mediation-core/internal/message"
)

// QosGate is consulted by MediationEngine.Mediate before a sequence runs.
// Acquire may block (e.g. a rate limiter waiting for a token) or reject
// immediately (e.g. an expired auth token); a non-nil error aborts
// mediation before any mediator executes.
type QosGate interface {
	Acquire(ctx context.Context, msg *message.Message) error
}

// Chain runs gates in order, stopping at the first error.
type Chain []QosGate

func (c Chain) Acquire(ctx context.Context, msg *message.Message) error {
	for _, gate := range c {
		if err := gate.Acquire(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
