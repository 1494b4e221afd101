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

// Package metrics exposes Prometheus counters and gauges for mediation,
// endpoint and registry activity. Nothing in the core requires metrics to
// be wired; a nil *Metrics is safe to call into (every method is a no-op).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one mediation core instance.
// All fields are safe for concurrent use, per the prometheus client's own
// guarantees.
type Metrics struct {
	MediationsTotal   *prometheus.CounterVec
	MediationDuration *prometheus.HistogramVec
	EndpointFailures  *prometheus.CounterVec
	EndpointAvailable *prometheus.GaugeVec
	RegistrySize      *prometheus.GaugeVec
}

// New registers and returns a fresh Metrics set against reg. Passing
// prometheus.NewRegistry() keeps this instance isolated from the global
// default registry, which matters for tests that build multiple engines.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MediationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediation_requests_total",
			Help: "Total number of MediationEngine.Mediate calls, by sequence and outcome.",
		}, []string{"sequence", "outcome"}),
		MediationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "mediation_duration_seconds",
			Help: "Duration of MediationEngine.Mediate calls, by sequence.",
		}, []string{"sequence"}),
		EndpointFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "endpoint_failures_total",
			Help: "Total Endpoint.Send failures, by endpoint name.",
		}, []string{"endpoint"}),
		EndpointAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "endpoint_available",
			Help: "1 if the endpoint is currently available, else 0.",
		}, []string{"endpoint"}),
		RegistrySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "registry_entries",
			Help: "Number of entries in a Registry store, by store name.",
		}, []string{"store"}),
	}
	reg.MustRegister(m.MediationsTotal, m.MediationDuration, m.EndpointFailures, m.EndpointAvailable, m.RegistrySize)
	return m
}

// ObserveMediation records the outcome and duration of one Mediate call.
func (m *Metrics) ObserveMediation(sequence string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.MediationsTotal.WithLabelValues(sequence, outcome).Inc()
	m.MediationDuration.WithLabelValues(sequence).Observe(elapsed.Seconds())
}

// ObserveEndpointFailure increments the failure counter for endpoint.
func (m *Metrics) ObserveEndpointFailure(endpointName string) {
	if m == nil {
		return
	}
	m.EndpointFailures.WithLabelValues(endpointName).Inc()
}

// SetEndpointAvailable records current availability for endpoint.
func (m *Metrics) SetEndpointAvailable(endpointName string, available bool) {
	if m == nil {
		return
	}
	v := 0.0
	if available {
		v = 1.0
	}
	m.EndpointAvailable.WithLabelValues(endpointName).Set(v)
}

// SetRegistrySize records the current entry count for a named store.
func (m *Metrics) SetRegistrySize(store string, size int) {
	if m == nil {
		return
	}
	m.RegistrySize.WithLabelValues(store).Set(float64(size))
}
