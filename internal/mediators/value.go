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

// Package mediators implements the built-in mediation building blocks: Log,
// Property, Filter, Switch, a Sequence reference, Transform, Send and Call.
//
// A configured value that might be a literal string, a header reference, a
// property reference or an XPath expression is represented here as a small
// tagged Source value, rather than dispatched on with type assertions at
// each use site.
package mediators

import (
	"fmt"
	"regexp"

	"github.com/synapse-go/mediation-core/internal/message"
)

// Source resolves a string value out of a Message: a literal, a header
// reference ($header.X), a property reference ($property.X), or an XPath
// expression evaluated by an external collaborator.
type Source interface {
	Resolve(msg *message.Message) (string, bool)
}

// Literal is a constant Source.
type Literal string

func (l Literal) Resolve(*message.Message) (string, bool) { return string(l), true }

// HeaderSource resolves $header.X against msg.Headers.
type HeaderSource string

func (h HeaderSource) Resolve(msg *message.Message) (string, bool) {
	if !msg.Headers.Has(string(h)) {
		return "", false
	}
	return msg.Headers.Get(string(h)), true
}

// PropertySource resolves $property.X against msg.Properties, stringifying
// non-string values with fmt.Sprint.
type PropertySource string

func (p PropertySource) Resolve(msg *message.Message) (string, bool) {
	v, ok := msg.Property(string(p))
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// XPathEvaluator is the external collaborator that evaluates an XPath
// expression against a Message's payload. Payload parsing and XPath
// evaluation are deliberately kept out of this package; it only consumes
// this narrow contract.
type XPathEvaluator interface {
	Evaluate(expr string, msg *message.Message) (string, bool)
}

// XPathSource delegates resolution to an XPathEvaluator. If Evaluator is
// nil, resolution is unconditionally false/absent rather than panicking.
type XPathSource struct {
	Expr      string
	Evaluator XPathEvaluator
}

func (x XPathSource) Resolve(msg *message.Message) (string, bool) {
	if x.Evaluator == nil {
		return "", false
	}
	return x.Evaluator.Evaluate(x.Expr, msg)
}

// Matcher decides whether a resolved value matches some configured
// criterion: exact equality or a compiled regular expression.
type Matcher struct {
	Regex   *regexp.Regexp
	Literal string
	isRegex bool
}

// ExactMatch builds a Matcher requiring byte-exact equality.
func ExactMatch(literal string) Matcher {
	return Matcher{Literal: literal}
}

// RegexMatch builds a Matcher requiring a regular expression match.
func RegexMatch(re *regexp.Regexp) Matcher {
	return Matcher{Regex: re, isRegex: true}
}

func (m Matcher) Match(value string) bool {
	if m.isRegex {
		if m.Regex == nil {
			return false
		}
		return m.Regex.MatchString(value)
	}
	return value == m.Literal
}
