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

// Package engine implements MediationEngine: the entry point that resolves
// a target sequence by name, runs it behind configured QoS gates, and
// drives listener/sender lifecycle through a transport.Manager.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/synapse-go/mediation-core/internal/endpoint"
	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
	"github.com/synapse-go/mediation-core/internal/qos"
	"github.com/synapse-go/mediation-core/internal/registry"
	"github.com/synapse-go/mediation-core/internal/tracing"
	"github.com/synapse-go/mediation-core/internal/transport"
)

// Engine is the MediationEngine: the single entry point every Listener
// callback routes through.
type Engine struct {
	reg     *registry.Registry
	gates   qos.Chain
	manager *transport.Manager
	logger  *slog.Logger
	tracer  *tracing.Tracer

	mu      sync.Mutex
	started bool
	stopped bool
}

// New builds an Engine around an existing Registry and transport.Manager,
// with the given QoS gate chain applied to every Mediate call. Tracing uses
// the globally configured otel TracerProvider (otel.SetTracerProvider sets
// it up once at process start); there is no per-Engine provider override.
func New(reg *registry.Registry, manager *transport.Manager, gates qos.Chain, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{reg: reg, manager: manager, gates: gates, logger: logger, tracer: tracing.New(nil)}
}

// RegisterSequence wraps every mediator in seq with the cross-cutting
// recover/logging/tracing behavior mandated for the mediation pipeline,
// then stores the wrapped copy in the Registry. Wrapping happens once here
// rather than on every Mediate call so the per-message cost is just the
// wrapped calls themselves.
func (e *Engine) RegisterSequence(name string, seq *mediator.Sequence) {
	e.reg.SetSequence(name, wrapSequence(seq, e.logger, e.tracer))
}

// wrapSequence returns a shallow copy of seq with each mediator wrapped,
// innermost to outermost, as: tracing span -> debug logging -> panic
// recovery. Recovery sits outermost so a panic anywhere in the chain,
// including inside the logging or tracing wrappers, still comes back as a
// MediationError instead of crashing the caller.
func wrapSequence(seq *mediator.Sequence, logger *slog.Logger, tracer *tracing.Tracer) *mediator.Sequence {
	wrapped := make([]mediator.Mediator, len(seq.Mediators))
	for i, m := range seq.Mediators {
		m = tracing.WrapMediator(tracer, m)
		m = mediator.WithLogging(m, logger)
		m = mediator.WithRecover(m)
		wrapped[i] = m
	}
	return &mediator.Sequence{
		Name:            seq.Name,
		Mediators:       wrapped,
		Template:        seq.Template,
		Parameters:      seq.Parameters,
		OnErrorSequence: seq.OnErrorSequence,
	}
}

// RegisterEndpoint is a pass-through to the underlying Registry.
func (e *Engine) RegisterEndpoint(name string, ep *endpoint.Endpoint) {
	e.reg.SetEndpoint(name, ep)
}

// GetRegistry returns the engine's Registry.
func (e *Engine) GetRegistry() *registry.Registry {
	return e.reg
}

// Mediate is the primary entry point: acquire the QoS gate chain, resolve
// sequenceName in the registry, apply it to msg, and return the result.
// If the sequence fails and an onErrorSequence is configured, that
// sequence runs instead, on a clone of msg that carries the error under
// the "MEDIATION_ERROR" property; otherwise the original error is returned as a MediationError.
func (e *Engine) Mediate(ctx context.Context, msg *message.Message, sequenceName string) (out *message.Message, err error) {
	ctx, span := e.tracer.StartMediation(ctx, sequenceName, msg)
	defer func() { tracing.EndMediation(span, err) }()

	if e.gates != nil {
		if err = e.gates.Acquire(ctx, msg); err != nil {
			return nil, err
		}
	}

	seq, ok := e.reg.Sequence(sequenceName)
	if !ok {
		err = mediator.NewError(mediator.KindNotFound, sequenceName, "sequence not registered", nil)
		return nil, err
	}

	out, err = seq.Apply(msg)
	if err == nil {
		return out, nil
	}

	if seq.OnErrorSequence == "" {
		err = mediator.Wrap(sequenceName, err)
		return nil, err
	}

	errSeq, ok := e.reg.Sequence(seq.OnErrorSequence)
	if !ok {
		e.logger.Error("onErrorSequence not found", "sequence", sequenceName, "onErrorSequence", seq.OnErrorSequence)
		err = mediator.Wrap(sequenceName, err)
		return nil, err
	}

	faulted := msg.Clone()
	_ = faulted.SetProperty("MEDIATION_ERROR", err)
	out, err = errSeq.Apply(faulted)
	return out, err
}

// Start starts every registered transport Listener via the manager. A
// call after a successful Start is a no-op that returns nil.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	if err := e.manager.InitializeListeners(); err != nil {
		return err
	}
	if err := e.manager.StartListeners(); err != nil {
		return err
	}
	e.started = true
	return nil
}

// Stop stops every registered transport Listener via the manager. Stop is
// idempotent: calling it again after a successful stop is a no-op.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	err := e.manager.StopListeners()
	e.stopped = true
	return err
}
