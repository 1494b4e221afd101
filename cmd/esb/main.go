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

// Command esb boots a mediation core instance: load config, wire QoS
// gates and transports, start listening, and run until signaled.
// Sequence/endpoint deployment from artifact files is out of scope here;
// wiring the core is all this binary does.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/synapse-go/mediation-core/internal/banner"
	"github.com/synapse-go/mediation-core/internal/config"
	"github.com/synapse-go/mediation-core/internal/configwatcher"
	"github.com/synapse-go/mediation-core/internal/engine"
	"github.com/synapse-go/mediation-core/internal/metrics"
	"github.com/synapse-go/mediation-core/internal/qos"
	"github.com/synapse-go/mediation-core/internal/registry"
	"github.com/synapse-go/mediation-core/internal/router"
	"github.com/synapse-go/mediation-core/internal/transport"
	"github.com/synapse-go/mediation-core/internal/transport/httptransport"
)

func main() {
	confPath := flag.String("config", "conf/deployment.toml", "path to deployment.toml")
	flag.Parse()

	if err := run(*confPath); err != nil {
		log.Fatal(err)
	}
}

func run(confPath string) error {
	banner.Print()
	start := time.Now()

	cfg, err := config.ReadFile(confPath)
	if err != nil {
		return fmt.Errorf("esb: loading %s: %w", confPath, err)
	}

	loggerFactory, err := cfg.LoggerFactory()
	if err != nil {
		return fmt.Errorf("esb: building logger factory: %w", err)
	}
	logger := loggerFactory.Logger("esb")

	metricsCollector := metrics.New(prometheus.NewRegistry())

	reg := registry.New(loggerFactory.Logger("registry"))
	manager := transport.NewManager(loggerFactory.Logger("transport"))
	eng := engine.New(reg, manager, buildGateChain(cfg), loggerFactory.Logger("engine"))

	rt := &router.Router{
		Engine:          eng,
		DefaultSequence: "main",
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	listener := httptransport.NewListener(httptransport.ListenerConfig{
		Name: "http",
		Addr: addr,
	}, loggerFactory.Logger("httptransport"))
	listener.SetMessageCallback(rt.Route)
	manager.RegisterListener(listener)
	manager.RegisterSender(httptransport.NewSender(nil))

	watcher, err := configwatcher.New(confPath, func(c *config.Config) error {
		loggerFactory.SetLevels(c.Logger.Levels)
		return nil
	}, loggerFactory.Logger("configwatcher"))
	if err != nil {
		return fmt.Errorf("esb: starting config watcher: %w", err)
	}
	defer watcher.Close()

	if err := eng.Start(); err != nil {
		return fmt.Errorf("esb: starting transports: %w", err)
	}
	metricsCollector.SetRegistrySize("sequences", len(reg.Sequences()))

	logger.Info("esb started", "elapsed", time.Since(start), "addr", addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	if err := eng.Stop(); err != nil {
		return fmt.Errorf("esb: stopping transports: %w", err)
	}
	return nil
}

func buildGateChain(cfg *config.Config) qos.Chain {
	var chain qos.Chain
	if cfg.Qos.RateLimit.Enabled {
		chain = append(chain, qos.NewRateLimitGate(cfg.Qos.RateLimit.RequestsPerSecond, cfg.Qos.RateLimit.Burst))
	}
	if cfg.Qos.Auth.Enabled {
		secret := []byte(cfg.Qos.Auth.Secret)
		chain = append(chain, qos.NewAuthGate(func(*jwt.Token) (interface{}, error) {
			return secret, nil
		}))
	}
	// qos.CacheGate is deliberately not part of this chain: its Acquire is
	// a no-op by design (see internal/qos/cache.go). A deployment wanting
	// cache short-circuiting wires CacheGate.Lookup/Store directly around
	// the call to Engine.Mediate instead.
	return chain
}
