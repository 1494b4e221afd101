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

// Package httptransport is the reference HTTP binding of
// transport.Listener/transport.Sender: an inbound net/http server that
// feeds a MessageCallback, and an outbound client Sender for http(s)://
// endpoint URIs. CORS is applied with rs/cors, matching the rest of the
// ecosystem's approach to that concern.
package httptransport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/synapse-go/mediation-core/internal/message"
	"github.com/synapse-go/mediation-core/internal/router"
	"github.com/synapse-go/mediation-core/internal/transport"
)

// CORSConfig mirrors the fields rs/cors.Options exposes, in the shape this
// module's config layer carries them.
type CORSConfig struct {
	Enabled          bool
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAgeSeconds    int
}

func (c CORSConfig) wrap(h http.Handler) http.Handler {
	if !c.Enabled {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   c.AllowOrigins,
		AllowedMethods:   c.AllowMethods,
		AllowedHeaders:   c.AllowHeaders,
		ExposedHeaders:   c.ExposeHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           c.MaxAgeSeconds,
	}).Handler(h)
}

// ListenerConfig configures a Listener.
type ListenerConfig struct {
	Name         string
	Addr         string
	SequenceName string
	CORS         CORSConfig
	// HealthPath defaults to /livez when empty.
	HealthPath string
	// API, if set, is served as /swagger.json and /swagger.yaml.
	API *router.APIDescriptor
	// Hostname/Port feed the OpenAPI document's servers[0].url; Port
	// defaults to 80 when zero.
	Hostname string
	Port     int
}

// Listener is the HTTP inbound adapter: every request becomes a Message
// handed to the registered MessageCallback, and the callback's response
// (if non-nil) is written back to the client.
type Listener struct {
	cfg    ListenerConfig
	logger *slog.Logger

	mu      sync.Mutex
	server  *http.Server
	running bool
	cb      transport.MessageCallback
}

// NewListener builds a Listener from cfg. Call Init then Start to bring it
// up; SetMessageCallback must be called before Start.
func NewListener(cfg ListenerConfig, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/livez"
	}
	if cfg.Port == 0 {
		cfg.Port = 80
	}
	return &Listener{cfg: cfg, logger: logger}
}

func (l *Listener) Name() string { return l.cfg.Name }

// Init builds the handler chain but does not start listening.
func (l *Listener) Init() error {
	mux := http.NewServeMux()
	mux.HandleFunc(l.cfg.HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if l.cfg.API != nil {
		mux.HandleFunc("/swagger.json", l.serveSwaggerJSON)
		mux.HandleFunc("/swagger.yaml", l.serveSwaggerYAML)
	}
	mux.HandleFunc("/", l.handle)

	l.mu.Lock()
	l.server = &http.Server{Addr: l.cfg.Addr, Handler: l.cfg.CORS.wrap(mux)}
	l.mu.Unlock()
	return nil
}

// SetMessageCallback implements transport.Listener.
func (l *Listener) SetMessageCallback(cb transport.MessageCallback) {
	l.mu.Lock()
	l.cb = cb
	l.mu.Unlock()
}

func (l *Listener) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	msg := message.New(message.Request)
	msg.Payload = body
	msg.ContentType = r.Header.Get("Content-Type")
	for name, values := range r.Header {
		for _, v := range values {
			msg.Headers.Set(name, v)
		}
	}
	msg.SetProperty(message.PropHTTPMethod, r.Method)
	msg.SetProperty(message.PropHTTPURI, r.URL.String())

	l.mu.Lock()
	cb := l.cb
	l.mu.Unlock()
	if cb == nil {
		http.Error(w, "listener not ready", http.StatusServiceUnavailable)
		return
	}

	resp, err := cb(msg)
	if err != nil {
		l.logger.Error("http inbound mediation failed", "error", err)
		status := router.StatusForError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	status := http.StatusOK
	if v, ok := resp.Property(message.PropHTTPStatusCode); ok {
		if code, ok := v.(int); ok && code != 0 {
			status = code
		}
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	for _, name := range resp.Headers.Names() {
		w.Header().Set(name, resp.Headers.Get(name))
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Payload)
}

func (l *Listener) serveSwaggerJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := l.cfg.API.ToJSON(l.cfg.Hostname, l.cfg.Port)
	if err != nil {
		http.Error(w, "cannot generate OpenAPI document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

func (l *Listener) serveSwaggerYAML(w http.ResponseWriter, _ *http.Request) {
	body, err := l.cfg.API.ToYAML(l.cfg.Hostname, l.cfg.Port)
	if err != nil {
		http.Error(w, "cannot generate OpenAPI document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(body)
}

// Start brings the HTTP server up in a background goroutine.
func (l *Listener) Start() error {
	l.mu.Lock()
	server := l.server
	l.mu.Unlock()
	if server == nil {
		return errors.New("httptransport: Init must be called before Start")
	}

	go func() {
		l.logger.Info("http listener starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("http listener stopped with error", "error", err)
		}
	}()

	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	return nil
}

// Stop shuts the server down gracefully, waiting up to 10 seconds for
// in-flight requests to drain.
func (l *Listener) Stop() error {
	l.mu.Lock()
	server := l.server
	l.running = false
	l.mu.Unlock()
	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func (l *Listener) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Sender dispatches outbound messages over http(s).
type Sender struct {
	client *http.Client
}

// NewSender builds a Sender using client, or http.DefaultClient if nil.
func NewSender(client *http.Client) *Sender {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sender{client: client}
}

func (s *Sender) Name() string { return "http" }

func (s *Sender) Init() error { return nil }

// CanHandle reports whether endpointURI looks like an http(s) URL.
func (s *Sender) CanHandle(endpointURI string) bool {
	return len(endpointURI) > 7 && (endpointURI[:7] == "http://" || (len(endpointURI) > 8 && endpointURI[:8] == "https://"))
}

// Send issues an HTTP POST carrying msg's payload and returns the response
// as a Message.
func (s *Sender) Send(msg *message.Message, endpointURI string) (*message.Message, error) {
	req, err := http.NewRequest(http.MethodPost, endpointURI, bytes.NewReader(msg.Payload))
	if err != nil {
		return nil, fmt.Errorf("httptransport: build request: %w", err)
	}
	if msg.ContentType != "" {
		req.Header.Set("Content-Type", msg.ContentType)
	}
	for _, name := range msg.Headers.Names() {
		req.Header.Set(name, msg.Headers.Get(name))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httptransport: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httptransport: read response: %w", err)
	}

	out := message.New(message.Response)
	out.Payload = body
	out.ContentType = resp.Header.Get("Content-Type")
	out.SetProperty(message.PropHTTPStatusCode, resp.StatusCode)
	return out, nil
}

func (s *Sender) Close() error { return nil }
