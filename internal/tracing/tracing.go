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

// Package tracing wraps mediation with OpenTelemetry spans: one span per
// MediationEngine.Mediate call, and one span per mediator inside a
// Sequence. Mediator spans are root spans, not children of the Mediate
// span.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

const instrumentationName = "github.com/synapse-go/mediation-core/internal/tracing"

// Tracer wraps an otel Tracer with the span-naming conventions this module
// uses.
type Tracer struct {
	tracer trace.Tracer
}

// New builds a Tracer against the given TracerProvider. Passing nil uses
// the globally configured provider (otel.GetTracerProvider()), the same
// convention the rest of the otel ecosystem follows.
func New(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer(instrumentationName)}
}

// StartMediation starts the span wrapping one MediationEngine.Mediate call.
func (t *Tracer) StartMediation(ctx context.Context, sequenceName string, msg *message.Message) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "mediate "+sequenceName,
		trace.WithAttributes(
			attribute.String("mediation.sequence", sequenceName),
			attribute.String("mediation.message_id", msg.ID),
		))
	return ctx, span
}

// WrapMediator wraps m so each Mediate call runs inside its own span, named
// after the mediator. The span is started from context.Background(), so it
// has no parent span.
func WrapMediator(tracer *Tracer, m mediator.Mediator) mediator.Mediator {
	if tracer == nil {
		return m
	}
	return &mediator.Func{
		MediatorName: m.Name(),
		Fn: func(msg *message.Message) (*message.Message, error) {
			ctx, span := tracer.tracer.Start(context.Background(), "mediator "+m.Name())
			defer span.End()
			out, err := m.Mediate(msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			_ = ctx
			return out, err
		},
	}
}

// EndMediation finalizes span with err's outcome, recording it if non-nil.
func EndMediation(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
