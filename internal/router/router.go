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

// Package router implements a pattern-matching Router: a
// transport.MessageCallback that picks a target sequence from a message's
// URI-like attribute and hands off to a MediationEngine.
package router

import (
	"context"
	"errors"
	"regexp"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// Rule pairs a compiled pattern with the sequence to run when it matches.
type Rule struct {
	Pattern      *regexp.Regexp
	SequenceName string
}

// Mediator is the narrow capability Router needs from a MediationEngine.
type Mediator interface {
	Mediate(ctx context.Context, msg *message.Message, sequenceName string) (*message.Message, error)
}

// ErrorReplyBuilder builds a transport-appropriate reply for a mediation
// failure, e.g. an HTTP 500 with a plain-text body. Router never discards
// mediation errors silently: if no builder is configured, Route returns
// the error directly instead of synthesizing a reply.
type ErrorReplyBuilder func(err error) *message.Message

// Router selects a target sequence for message attribute uri: ordered
// rules are scanned in order, first match wins; no match (or an empty
// rule set) falls back to DefaultSequence.
type Router struct {
	Rules             []Rule
	DefaultSequence   string
	Engine            Mediator
	URIProperty       string // defaults to message.PropHTTPURI
	ErrorReplyBuilder ErrorReplyBuilder
}

// Resolve returns the sequence name that uri routes to.
func (r *Router) Resolve(uri string) string {
	for _, rule := range r.Rules {
		if rule.Pattern != nil && rule.Pattern.MatchString(uri) {
			return rule.SequenceName
		}
	}
	return r.DefaultSequence
}

// Route implements transport.MessageCallback: it resolves a sequence from
// msg's URI property and dispatches to Engine.Mediate. A mediation failure
// produces a transport-appropriate error reply via ErrorReplyBuilder when
// one is configured; otherwise the error propagates to the caller.
func (r *Router) Route(msg *message.Message) (*message.Message, error) {
	uriProp := r.URIProperty
	if uriProp == "" {
		uriProp = message.PropHTTPURI
	}
	var uri string
	if v, ok := msg.Property(uriProp); ok {
		if s, ok := v.(string); ok {
			uri = s
		}
	}

	seqName := r.Resolve(uri)
	if r.Engine == nil {
		return nil, errors.New("router: no engine configured")
	}

	out, err := r.Engine.Mediate(context.Background(), msg, seqName)
	if err != nil {
		if r.ErrorReplyBuilder != nil {
			return r.ErrorReplyBuilder(err), nil
		}
		return nil, err
	}
	return out, nil
}

// StatusForError maps a mediation error's Kind to the conventional HTTP
// status code: 404 for NotFound, 503 for NotAvailable, 500 otherwise.
func StatusForError(err error) int {
	var me *mediator.Error
	if errors.As(err, &me) {
		switch me.Kind {
		case mediator.KindNotFound:
			return 404
		case mediator.KindNotAvailable:
			return 503
		}
	}
	return 500
}
