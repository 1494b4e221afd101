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

package qos

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// PropAuthToken is the message property an inbound adapter is expected to
// stash the raw bearer token under, before mediation reaches AuthGate.
const PropAuthToken = "auth.bearerToken"

// AuthGate validates a bearer JWT carried on the message before allowing
// mediation to proceed.
type AuthGate struct {
	KeyFunc jwt.Keyfunc
	Parser  *jwt.Parser
}

// NewAuthGate builds a gate that validates tokens with keyFunc, using the
// library default parser options.
func NewAuthGate(keyFunc jwt.Keyfunc) *AuthGate {
	return &AuthGate{KeyFunc: keyFunc, Parser: jwt.NewParser()}
}

func (g *AuthGate) Acquire(_ context.Context, msg *message.Message) error {
	v, ok := msg.Property(PropAuthToken)
	if !ok {
		return mediator.NewError(mediator.KindValidation, "auth", "missing bearer token", nil)
	}
	raw, ok := v.(string)
	if !ok || raw == "" {
		return mediator.NewError(mediator.KindValidation, "auth", "bearer token is not a string", nil)
	}

	parser := g.Parser
	if parser == nil {
		parser = jwt.NewParser()
	}
	token, err := parser.Parse(raw, g.KeyFunc)
	if err != nil {
		return mediator.NewError(mediator.KindValidation, "auth", "invalid bearer token", err)
	}
	if !token.Valid {
		return mediator.NewError(mediator.KindValidation, "auth", "token failed validation", nil)
	}
	return nil
}
