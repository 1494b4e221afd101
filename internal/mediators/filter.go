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

// FilterMediator evaluates a Source against a Matcher and runs one of two
// inner sequences depending on the outcome. Either branch may be nil, in
// which case the message passes through unmodified on that branch.
type FilterMediator struct {
	MediatorName string
	Value        Source
	Match        Matcher
	Then         *mediator.Sequence
	Else         *mediator.Sequence
}

func (fm *FilterMediator) Name() string {
	if fm.MediatorName != "" {
		return fm.MediatorName
	}
	return "filter"
}

func (fm *FilterMediator) Mediate(msg *message.Message) (*message.Message, error) {
	branch := fm.Else
	if fm.Value != nil {
		resolved, _ := fm.Value.Resolve(msg)
		if fm.Match.Match(resolved) {
			branch = fm.Then
		}
	}
	if branch == nil {
		return msg, nil
	}
	out, err := branch.Apply(msg)
	if err != nil {
		return out, mediator.Wrap(fm.Name(), err)
	}
	return out, nil
}
