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

package mediator

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/synapse-go/mediation-core/internal/message"
)

// Sequence is an ordered list of Mediators applied as a unit. A template
// sequence cannot be Applied directly; it must first be Instantiated with
// positional parameters.
type Sequence struct {
	Name            string
	Mediators       []Mediator
	Template        bool
	Parameters      []string // positional parameter names/placeholders (documentation only)
	OnErrorSequence string
}

// ErrTemplateNotRunnable is returned by Apply when called on a template
// sequence that was never instantiated.
var ErrTemplateNotRunnable = fmt.Errorf("mediator: template sequence cannot be applied directly")

// Apply runs seq against msg: mediators execute strictly in registered
// order; STOP_FLOW short-circuits the remaining mediators.
func (seq *Sequence) Apply(msg *message.Message) (*message.Message, error) {
	if seq.Template {
		return nil, NewError(KindConfig, seq.Name, ErrTemplateNotRunnable.Error(), nil)
	}
	cur := msg
	for _, m := range seq.Mediators {
		next, err := m.Mediate(cur)
		if err != nil {
			return cur, err
		}
		cur = next
		if cur.StopFlow() {
			return cur, nil
		}
	}
	return cur, nil
}

// paramPattern matches the positional placeholder syntax $param.N (1-based).
var paramPattern = regexp.MustCompile(`^\$param\.(\d+)$`)

// SubstituteParam resolves a single configured value against params: if v
// matches $param.N, it is replaced by params[N-1]; any other string is
// returned untouched. Returns a ConfigError if N exceeds len(params).
func SubstituteParam(v string, params []string) (string, error) {
	match := paramPattern.FindStringSubmatch(v)
	if match == nil {
		return v, nil
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return v, nil
	}
	if n < 1 || n > len(params) {
		return "", NewError(KindConfig, "", fmt.Sprintf("template parameter $param.%d exceeds supplied parameter count %d", n, len(params)), nil)
	}
	return params[n-1], nil
}

// Templatable is implemented by mediators whose configured values may
// contain $param.N placeholders. InstantiateParams returns a new mediator with
// placeholders substituted; mediators that don't implement it are copied
// into the instantiated sequence unchanged.
type Templatable interface {
	InstantiateParams(params []string) (Mediator, error)
}

// Instantiate produces a deep-copied, non-template Sequence from a
// template, substituting $param.N placeholders by position. It is a pure
// function of (seq, params): equal inputs produce structurally equal
// sequences.
func (seq *Sequence) Instantiate(params []string) (*Sequence, error) {
	mediators := make([]Mediator, len(seq.Mediators))
	for i, m := range seq.Mediators {
		if t, ok := m.(Templatable); ok {
			inst, err := t.InstantiateParams(params)
			if err != nil {
				return nil, err
			}
			mediators[i] = inst
		} else {
			mediators[i] = m
		}
	}
	return &Sequence{
		Name:            seq.Name,
		Mediators:       mediators,
		Template:        false,
		OnErrorSequence: seq.OnErrorSequence,
	}, nil
}
