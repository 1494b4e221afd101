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

// Package config loads deployment.toml-shaped configuration with koanf and
// unmarshals it into the settings structs the rest of the core needs:
// logging, the listening server, QoS gates and endpoint retry behavior.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/synapse-go/mediation-core/internal/logging"
)

// ServerConfig describes the listening address the transport manager binds.
type ServerConfig struct {
	Hostname string `koanf:"hostname"`
	Port     int    `koanf:"port"`
}

// RateLimitConfig configures qos.RateLimitGate.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requestsPerSecond"`
	Burst             int     `koanf:"burst"`
}

// CacheConfig configures qos.CacheGate.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	TTL     string `koanf:"ttl"`
}

// AuthConfig configures qos.AuthGate.
type AuthConfig struct {
	Enabled bool   `koanf:"enabled"`
	Secret  string `koanf:"secret"`
}

// QosConfig groups every QoS gate's settings.
type QosConfig struct {
	RateLimit RateLimitConfig `koanf:"rateLimit"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
}

// EndpointConfig carries the endpoint retry settings read from
// deployment.toml. Nothing in this module applies them to endpoint.Config;
// endpoints use endpoint.Config's own defaults.
type EndpointConfig struct {
	MaxFailureCount uint32 `koanf:"maxFailureCount"`
	RetryTimeoutMs  int    `koanf:"retryTimeoutMs"`
}

// Provider is the subset of *Config a consumer needs to read settings
// without depending on the concrete koanf-backed type.
type Provider interface {
	IsSet(key string) bool
	Unmarshal(key string, out interface{}) error
	MustUnmarshal(key string, out interface{})
}

// Config is the root of a loaded deployment.toml.
type Config struct {
	koanf *koanf.Koanf

	Logger   LoggerConfig   `koanf:"logger"`
	Server   ServerConfig   `koanf:"server"`
	Qos      QosConfig      `koanf:"qos"`
	Endpoint EndpointConfig `koanf:"endpoint"`
}

// LoggerConfig mirrors logging.HandlerConfig plus the per-component level
// map, in the shape deployment.toml carries them.
type LoggerConfig struct {
	Handler logging.HandlerConfig `koanf:"handler"`
	Levels  map[string]string     `koanf:"level"`
}

// ReadFile loads and unmarshals filename, a TOML document, into a Config.
func ReadFile(filename string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(filename), toml.Parser()); err != nil {
		return nil, fmt.Errorf("config: cannot load %s: %w", filename, err)
	}
	cfg := &Config{koanf: k}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: cannot unmarshal %s: %w", filename, err)
	}
	return cfg, nil
}

// IsSet reports whether key exists in the underlying document, for optional
// sections a caller wants to branch on before unmarshaling.
func (c *Config) IsSet(key string) bool {
	return c.koanf.Exists(key)
}

// Unmarshal decodes the subtree at key into out.
func (c *Config) Unmarshal(key string, out interface{}) error {
	if err := c.koanf.Unmarshal(key, out); err != nil {
		return fmt.Errorf("config: cannot unmarshal key %q: %w", key, err)
	}
	return nil
}

// MustUnmarshal decodes the subtree at key into out, panicking on failure.
// Reserved for startup paths where a malformed deployment.toml should abort
// the process immediately rather than continue with a zero-value section.
func (c *Config) MustUnmarshal(key string, out interface{}) {
	if err := c.Unmarshal(key, out); err != nil {
		panic(err)
	}
}

// LoggerFactory builds a logging.Factory from the loaded logger section.
func (c *Config) LoggerFactory() (*logging.Factory, error) {
	return logging.NewFactory(c.Logger.Handler, c.Logger.Levels)
}
