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

// Package filetransport is the file/FTP/SFTP binding of
// transport.Listener/transport.Sender, built on c2fo/vfs/v7 so the same
// polling and write logic works across file://, ftp:// and sftp://
// locations without a backend-specific code path. The os/ftp/sftp backend
// packages are imported for their registration side effect; vfssimple
// resolves a URI's scheme to the matching backend.
package filetransport

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/c2fo/vfs/v7"
	"github.com/c2fo/vfs/v7/vfssimple"

	_ "github.com/c2fo/vfs/v7/backend/ftp"
	_ "github.com/c2fo/vfs/v7/backend/os"
	_ "github.com/c2fo/vfs/v7/backend/sftp"

	"github.com/synapse-go/mediation-core/internal/message"
	"github.com/synapse-go/mediation-core/internal/transport"
)

// ListenerConfig configures a polling file Listener.
type ListenerConfig struct {
	Name string
	// LocationURI is a vfs location, e.g. "file:///var/spool/in/" or
	// "sftp://user@host/in/".
	LocationURI string
	// Pattern filters which file names in LocationURI are picked up.
	// A nil Pattern matches every file.
	Pattern *regexp.Regexp
	// ArchiveLocationURI, if set, is where a successfully processed file
	// is moved. If empty, the file is deleted after success instead.
	ArchiveLocationURI string
	PollInterval       time.Duration
}

// Listener polls a vfs location on a fixed interval, turning every
// matching file into a Message delivered to the registered callback.
type Listener struct {
	cfg    ListenerConfig
	logger *slog.Logger

	mu       sync.Mutex
	cb       transport.MessageCallback
	location vfs.Location
	archive  vfs.Location
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewListener builds a Listener from cfg.
func NewListener(cfg ListenerConfig, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Listener{cfg: cfg, logger: logger}
}

func (l *Listener) Name() string { return l.cfg.Name }

// Init resolves the configured location(s) without starting polling.
func (l *Listener) Init() error {
	loc, err := vfssimple.NewLocation(l.cfg.LocationURI)
	if err != nil {
		return fmt.Errorf("filetransport: resolve location %s: %w", l.cfg.LocationURI, err)
	}
	l.mu.Lock()
	l.location = loc
	l.mu.Unlock()

	if l.cfg.ArchiveLocationURI != "" {
		archive, err := vfssimple.NewLocation(l.cfg.ArchiveLocationURI)
		if err != nil {
			return fmt.Errorf("filetransport: resolve archive location %s: %w", l.cfg.ArchiveLocationURI, err)
		}
		l.mu.Lock()
		l.archive = archive
		l.mu.Unlock()
	}
	return nil
}

func (l *Listener) SetMessageCallback(cb transport.MessageCallback) {
	l.mu.Lock()
	l.cb = cb
	l.mu.Unlock()
}

// Start begins polling in a background goroutine.
func (l *Listener) Start() error {
	l.mu.Lock()
	if l.location == nil {
		l.mu.Unlock()
		return fmt.Errorf("filetransport: Init must be called before Start")
	}
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.running = true
	l.mu.Unlock()

	go l.poll()
	return nil
}

func (l *Listener) poll() {
	defer close(l.doneCh)
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if err := l.processOnce(); err != nil {
				l.logger.Error("filetransport: poll cycle failed", "error", err)
			}
		}
	}
}

func (l *Listener) processOnce() error {
	l.mu.Lock()
	loc, archive, cb := l.location, l.archive, l.cb
	l.mu.Unlock()

	var names []string
	var err error
	if l.cfg.Pattern != nil {
		names, err = loc.ListByRegex(l.cfg.Pattern)
	} else {
		names, err = loc.List()
	}
	if err != nil {
		return fmt.Errorf("filetransport: list %s: %w", loc.URI(), err)
	}

	for _, name := range names {
		if err := l.processFile(loc, archive, cb, name); err != nil {
			l.logger.Error("filetransport: file processing failed", "file", name, "error", err)
		}
	}
	return nil
}

func (l *Listener) processFile(loc, archive vfs.Location, cb transport.MessageCallback, name string) error {
	f, err := loc.NewFile(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	size, err := f.Size()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	body := make([]byte, size)
	if _, err := f.Read(body); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	msg := message.New(message.Request)
	msg.Payload = body
	msg.SetProperty("file.name", name)
	msg.SetProperty("file.uri", f.URI())

	if cb == nil {
		return fmt.Errorf("no message callback registered")
	}
	if _, err := cb(msg); err != nil {
		return fmt.Errorf("mediate %s: %w", name, err)
	}

	if archive != nil {
		if _, err := f.MoveToLocation(archive); err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		return nil
	}
	return f.Delete()
}

// Stop signals the polling goroutine to exit and waits for it to finish.
func (l *Listener) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	stopCh, doneCh := l.stopCh, l.doneCh
	l.mu.Unlock()

	close(stopCh)
	<-doneCh
	return nil
}

func (l *Listener) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Sender writes outbound message payloads to a vfs file URI.
type Sender struct{}

// NewSender builds a Sender.
func NewSender() *Sender { return &Sender{} }

func (s *Sender) Name() string { return "file" }

func (s *Sender) Init() error { return nil }

// CanHandle reports whether endpointURI uses a scheme this package
// registers a backend for.
func (s *Sender) CanHandle(endpointURI string) bool {
	for _, scheme := range []string{"file://", "ftp://", "sftp://"} {
		if len(endpointURI) >= len(scheme) && endpointURI[:len(scheme)] == scheme {
			return true
		}
	}
	return false
}

// Send writes msg's payload to endpointURI, creating or truncating the
// target file.
func (s *Sender) Send(msg *message.Message, endpointURI string) (*message.Message, error) {
	f, err := vfssimple.NewFile(endpointURI)
	if err != nil {
		return nil, fmt.Errorf("filetransport: resolve %s: %w", endpointURI, err)
	}
	if _, err := f.Write(msg.Payload); err != nil {
		return nil, fmt.Errorf("filetransport: write %s: %w", endpointURI, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("filetransport: close %s: %w", endpointURI, err)
	}
	return message.New(message.Response), nil
}

func (s *Sender) Close() error { return nil }
