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

// Package mediator defines the Mediator capability and the Sequence it
// composes into. A Mediator is a name plus a mediate function, and
// cross-cutting behavior (logging, recovery, tracing) wraps that function
// at registration time instead of living in a shared base class.
package mediator

import (
	"fmt"

	"github.com/synapse-go/mediation-core/internal/message"
)

// Mediator is the capability every mediation step implements: take a
// Message, return a Message (possibly the same one, mutated, or a new one)
// or an error. Implementations MUST NOT mutate msg concurrently with other
// goroutines; mediation is sequential within one request.
type Mediator interface {
	Name() string
	Mediate(msg *message.Message) (*message.Message, error)
}

// Func adapts a plain function plus a name into a Mediator, the way most
// built-in mediators in this module are constructed.
type Func struct {
	MediatorName string
	Fn           func(msg *message.Message) (*message.Message, error)
}

func (f *Func) Name() string { return f.MediatorName }

func (f *Func) Mediate(msg *message.Message) (*message.Message, error) {
	return f.Fn(msg)
}

// WithRecover wraps m so that a panic inside Mediate is converted into a
// MediationError of kind INTERNAL instead of crashing the calling worker
// goroutine.
func WithRecover(m Mediator) Mediator {
	return &Func{
		MediatorName: m.Name(),
		Fn: func(msg *message.Message) (out *message.Message, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = NewError(KindInternal, m.Name(), "panic during mediation", fmt.Errorf("%v", r))
				}
			}()
			out, err = m.Mediate(msg)
			if err != nil {
				err = Wrap(m.Name(), err)
			}
			return out, err
		},
	}
}

// Logger is the minimal logging capability a cross-cutting wrapper needs;
// satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...interface{})
}

// WithLogging wraps m so each invocation is traced at debug level,
// identifying the mediator by name.
func WithLogging(m Mediator, log Logger) Mediator {
	return &Func{
		MediatorName: m.Name(),
		Fn: func(msg *message.Message) (*message.Message, error) {
			log.Debug("mediator start", "mediator", m.Name(), "messageId", msg.ID)
			out, err := m.Mediate(msg)
			if err != nil {
				log.Debug("mediator error", "mediator", m.Name(), "messageId", msg.ID, "error", err)
			} else {
				log.Debug("mediator end", "mediator", m.Name(), "messageId", msg.ID)
			}
			return out, err
		},
	}
}
