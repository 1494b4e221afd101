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

// SequenceLookup resolves a registered sequence by name at mediation time,
// so a SequenceRefMediator always runs the current deployed version instead
// of one captured at configuration time. Satisfied by *registry.Registry.
type SequenceLookup interface {
	Sequence(name string) (*mediator.Sequence, bool)
}

// SequenceRefMediator invokes a named sequence looked up fresh on every
// call. If the resolved sequence is a template, Parameters instantiates it
// before applying.
type SequenceRefMediator struct {
	MediatorName string
	Ref          string
	Parameters   []string
	Lookup       SequenceLookup
}

func (sr *SequenceRefMediator) Name() string {
	if sr.MediatorName != "" {
		return sr.MediatorName
	}
	return "sequence"
}

func (sr *SequenceRefMediator) Mediate(msg *message.Message) (*message.Message, error) {
	if sr.Lookup == nil {
		return msg, mediator.NewError(mediator.KindConfig, sr.Name(), "no sequence lookup configured", nil)
	}
	seq, ok := sr.Lookup.Sequence(sr.Ref)
	if !ok {
		return msg, mediator.NewError(mediator.KindNotFound, sr.Name(), "referenced sequence not found: "+sr.Ref, nil)
	}
	if seq.Template {
		inst, err := seq.Instantiate(sr.Parameters)
		if err != nil {
			return msg, mediator.Wrap(sr.Name(), err)
		}
		seq = inst
	}
	out, err := seq.Apply(msg)
	if err != nil {
		return out, mediator.Wrap(sr.Name(), err)
	}
	return out, nil
}

func (sr *SequenceRefMediator) InstantiateParams(params []string) (mediator.Mediator, error) {
	ref, err := mediator.SubstituteParam(sr.Ref, params)
	if err != nil {
		return nil, err
	}
	return &SequenceRefMediator{MediatorName: sr.MediatorName, Ref: ref, Parameters: sr.Parameters, Lookup: sr.Lookup}, nil
}
