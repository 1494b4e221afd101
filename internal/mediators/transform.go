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
	"log/slog"
	"strings"

	"github.com/synapse-go/mediation-core/internal/mediator"
	"github.com/synapse-go/mediation-core/internal/message"
)

// Transformer applies a byte-level transformation to a payload of the
// given content type. An XSLT engine is the typical implementation for
// XML payloads; it is deliberately kept out of this package.
type Transformer interface {
	Transform(payload []byte, contentType string) ([]byte, error)
}

// TransformMediator runs Transformer against the message payload when the
// content type indicates XML; any other content type passes through
// unchanged, with a warning logged. The result is stored either back into
// the payload (with the content type updated to application/xml) or, if
// TargetProperty is set, into that named property instead.
type TransformMediator struct {
	MediatorName   string
	Transformer    Transformer
	TargetProperty string
	Logger         *slog.Logger
}

func (tm *TransformMediator) Name() string {
	if tm.MediatorName != "" {
		return tm.MediatorName
	}
	return "transform"
}

func (tm *TransformMediator) Mediate(msg *message.Message) (*message.Message, error) {
	if !isXMLContentType(msg.ContentType) {
		tm.logger().Warn("transform skipped: non-XML content type", "mediator", tm.Name(), "messageId", msg.ID, "contentType", msg.ContentType)
		return msg, nil
	}
	if tm.Transformer == nil {
		return msg, nil
	}
	out, err := tm.Transformer.Transform(msg.Payload, msg.ContentType)
	if err != nil {
		return msg, mediator.Wrap(tm.Name(), err)
	}
	if tm.TargetProperty != "" {
		if setErr := msg.SetProperty(tm.TargetProperty, out); setErr != nil {
			return msg, mediator.NewError(mediator.KindValidation, tm.Name(), "invalid target property name", setErr)
		}
		return msg, nil
	}
	msg.Payload = out
	msg.ContentType = "application/xml"
	return msg, nil
}

func (tm *TransformMediator) logger() *slog.Logger {
	if tm.Logger != nil {
		return tm.Logger
	}
	return slog.Default()
}

func isXMLContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}
