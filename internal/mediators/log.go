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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/synapse-go/mediation-core/internal/message"
)

// LogLevel selects the slog severity a LogMediator emits at.
type LogLevel string

const (
	LogInfo  LogLevel = "INFO"
	LogDebug LogLevel = "DEBUG"
	LogWarn  LogLevel = "WARN"
	LogError LogLevel = "ERROR"
	LogTrace LogLevel = "TRACE"
)

// LogDetail selects how much of the message a LogMediator includes.
type LogDetail string

const (
	LogSimple  LogDetail = "SIMPLE"  // id + direction
	LogHeaders LogDetail = "HEADERS" // + headers
	LogFull    LogDetail = "FULL"    // + properties + stringified payload
	LogCustom  LogDetail = "CUSTOM"  // + named properties list
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogDebug, LogTrace:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogMediator formats and emits a log record describing the message. It
// never mutates the message.
type LogMediator struct {
	MediatorName    string
	Level           LogLevel
	Detail          LogDetail
	CustomProperties []string // used when Detail == LogCustom
	Category        string    // message text of the log record; "mediation log" when empty
	Logger          *slog.Logger
}

func (lm *LogMediator) Name() string {
	if lm.MediatorName != "" {
		return lm.MediatorName
	}
	return "log"
}

func (lm *LogMediator) Mediate(msg *message.Message) (*message.Message, error) {
	logger := lm.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"messageId", msg.ID, "direction", msg.Direction.String()}

	switch lm.Detail {
	case LogHeaders:
		attrs = append(attrs, "headers", headersString(msg))
	case LogFull:
		attrs = append(attrs, "headers", headersString(msg), "properties", fmt.Sprint(msg.Properties), "payload", string(msg.Payload))
	case LogCustom:
		props := make(map[string]interface{}, len(lm.CustomProperties))
		for _, name := range lm.CustomProperties {
			if v, ok := msg.Property(name); ok {
				props[name] = v
			}
		}
		attrs = append(attrs, "properties", props)
	}

	text := lm.Category
	if text == "" {
		text = "mediation log"
	}
	logger.Log(context.Background(), lm.Level.slogLevel(), text, attrs...)
	return msg, nil
}

func headersString(msg *message.Message) string {
	var b strings.Builder
	for i, name := range msg.Headers.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(msg.Headers.Get(name))
	}
	return b.String()
}
