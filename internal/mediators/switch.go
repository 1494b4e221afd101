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

// SwitchCase pairs a Matcher with the sequence to run when it matches.
type SwitchCase struct {
	Match Matcher
	Then  *mediator.Sequence
}

// SwitchMediator resolves Value once, then runs the first Case whose
// Matcher matches, in list order. If none match, Default runs (may be
// nil, meaning pass-through).
type SwitchMediator struct {
	MediatorName string
	Value        Source
	Cases        []SwitchCase
	Default      *mediator.Sequence
}

func (sm *SwitchMediator) Name() string {
	if sm.MediatorName != "" {
		return sm.MediatorName
	}
	return "switch"
}

func (sm *SwitchMediator) Mediate(msg *message.Message) (*message.Message, error) {
	var resolved string
	if sm.Value != nil {
		resolved, _ = sm.Value.Resolve(msg)
	}
	for _, c := range sm.Cases {
		if c.Match.Match(resolved) {
			if c.Then == nil {
				return msg, nil
			}
			out, err := c.Then.Apply(msg)
			if err != nil {
				return out, mediator.Wrap(sm.Name(), err)
			}
			return out, nil
		}
	}
	if sm.Default == nil {
		return msg, nil
	}
	out, err := sm.Default.Apply(msg)
	if err != nil {
		return out, mediator.Wrap(sm.Name(), err)
	}
	return out, nil
}
