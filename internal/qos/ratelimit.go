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

	"golang.org/x/time/rate"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// RateLimitGate throttles mediation using a token-bucket limiter. Acquire
// blocks until a token is available or ctx is done, whichever comes first.
type RateLimitGate struct {
	limiter *rate.Limiter
}

// NewRateLimitGate builds a gate allowing ratePerSecond requests per second,
// with a burst of burst requests.
func NewRateLimitGate(ratePerSecond float64, burst int) *RateLimitGate {
	return &RateLimitGate{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (g *RateLimitGate) Acquire(ctx context.Context, _ *message.Message) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return mediator.NewError(mediator.KindNotAvailable, "ratelimit", "rate limit wait failed", err)
	}
	return nil
}
