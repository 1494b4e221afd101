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

// PropertyAction selects what PropertyMediator does: write or delete.
type PropertyAction string

const (
	PropertySet    PropertyAction = "SET"
	PropertyRemove PropertyAction = "REMOVE"
)

// PropertyScope selects where PropertyMediator reads/writes.
type PropertyScope string

const (
	ScopeMessage     PropertyScope = "default"   // msg.Properties
	ScopeTransportOut PropertyScope = "transport" // msg.Headers
)

// PropertyMediator writes or removes a named value on a message. REMOVE
// always deletes the key outright rather than nulling it, on either scope.
type PropertyMediator struct {
	MediatorName string
	Action       PropertyAction
	Scope        PropertyScope
	PropName     string
	Value        Source // used when Action == PropertySet
}

func (pm *PropertyMediator) Name() string {
	if pm.MediatorName != "" {
		return pm.MediatorName
	}
	return "property"
}

func (pm *PropertyMediator) Mediate(msg *message.Message) (*message.Message, error) {
	switch pm.Action {
	case PropertyRemove:
		if pm.Scope == ScopeTransportOut {
			msg.Headers.Remove(pm.PropName)
		} else {
			msg.RemoveProperty(pm.PropName)
		}
		return msg, nil
	case PropertySet:
		var resolved string
		if pm.Value != nil {
			resolved, _ = pm.Value.Resolve(msg)
		}
		if pm.Scope == ScopeTransportOut {
			msg.Headers.Set(pm.PropName, resolved)
		} else {
			if err := msg.SetProperty(pm.PropName, resolved); err != nil {
				return msg, mediator.NewError(mediator.KindValidation, pm.Name(), "invalid property name", err)
			}
		}
		return msg, nil
	default:
		return msg, mediator.NewError(mediator.KindConfig, pm.Name(), "unknown property action", nil)
	}
}

// InstantiateParams implements mediator.Templatable: PropName and a
// Literal Value may carry $param.N placeholders.
func (pm *PropertyMediator) InstantiateParams(params []string) (mediator.Mediator, error) {
	name, err := mediator.SubstituteParam(pm.PropName, params)
	if err != nil {
		return nil, err
	}
	value := pm.Value
	if lit, ok := pm.Value.(Literal); ok {
		v, err := mediator.SubstituteParam(string(lit), params)
		if err != nil {
			return nil, err
		}
		value = Literal(v)
	}
	return &PropertyMediator{
		MediatorName: pm.MediatorName,
		Action:       pm.Action,
		Scope:        pm.Scope,
		PropName:     name,
		Value:        value,
	}, nil
}
