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

package endpoint

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// Config controls an Endpoint's failure-detection and recovery behavior.
type Config struct {
	// MaxFailureCount is the number of consecutive Send failures after
	// which the endpoint becomes unavailable. A nil value means "unset",
	// defaulting to 3; an explicit 0 is honored as-is and trips the
	// endpoint unavailable after the very first failure. Use a literal
	// address (e.g. via a local variable) to set 0 explicitly.
	MaxFailureCount *uint32
	// RetryTimeout is how long an unavailable endpoint stays unavailable
	// before a half-open probe is allowed.
	RetryTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFailureCount == nil {
		def := uint32(3)
		c.MaxFailureCount = &def
	}
	if c.RetryTimeout == 0 {
		c.RetryTimeout = 30 * time.Second
	}
	return c
}

// Endpoint is a named outbound destination. It wraps a protocol-specific
// Sender with availability tracking: a consecutive-failure count, the
// timestamp of the last failure, and an available flag, all mutated
// together under one lock so readers never see a torn combination. The
// underlying gobreaker.CircuitBreaker supplies the open/half-open/closed
// state machine that decides whether a given Send attempt is let through.
type Endpoint struct {
	Name   string
	Sender Sender
	cfg    Config

	cb *gobreaker.CircuitBreaker

	mu              sync.Mutex
	failureCount    int
	lastFailureTime time.Time
	available       bool
}

// New builds an Endpoint around sender with the given configuration.
func New(name string, sender Sender, cfg Config) *Endpoint {
	cfg = cfg.withDefaults()
	e := &Endpoint{Name: name, Sender: sender, cfg: cfg, available: true}
	e.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.RetryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= *cfg.MaxFailureCount
		},
	})
	return e
}

// IsAvailable reports current availability, performing the half-open probe
// transition in place: if the endpoint is unavailable but RetryTimeout has
// elapsed since the last failure, it becomes available again with its
// failure count reset. This is the only path back to available other than
// a successful Send or an explicit Reset.
func (e *Endpoint) IsAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isAvailableLocked()
}

func (e *Endpoint) isAvailableLocked() bool {
	if e.available {
		return true
	}
	if time.Since(e.lastFailureTime) > e.cfg.RetryTimeout {
		e.available = true
		e.failureCount = 0
		return true
	}
	return false
}

// FailureCount returns the current consecutive-failure count.
func (e *Endpoint) FailureCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failureCount
}

// Send delivers msg through the underlying Sender, gated by availability
// and the circuit breaker. A call while unavailable fails immediately with
// kind NotAvailable, without reaching the Sender.
func (e *Endpoint) Send(msg *message.Message) (*message.Message, error) {
	if !e.IsAvailable() {
		return nil, mediator.NewError(mediator.KindNotAvailable, e.Name, "endpoint is unavailable", nil)
	}

	result, err := e.cb.Execute(func() (interface{}, error) {
		return e.Sender.Send(msg)
	})
	if err != nil {
		e.recordFailure()
		return nil, mediator.NewError(mediator.KindTransport, e.Name, "send failed", err)
	}
	e.recordSuccess()
	return result.(*message.Message), nil
}

func (e *Endpoint) recordFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failureCount++
	e.lastFailureTime = time.Now()
	if e.failureCount >= int(*e.cfg.MaxFailureCount) {
		e.available = false
	}
}

func (e *Endpoint) recordSuccess() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failureCount = 0
	e.available = true
}

// Reset forces the endpoint back to available with a zeroed failure count,
// independent of RetryTimeout elapsing.
func (e *Endpoint) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failureCount = 0
	e.available = true
}
