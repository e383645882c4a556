// Glfuzz
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package prometheus provides functions that are useful to control and manage
// the build-in prometheus instance. Each instance has its own registry so that
// independent sessions and tests don't collide.
package prometheus

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/purpleidea/glfuzz/util/errwrap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	// Logf is a logger which should be used. If nil, nothing is logged.
	Logf func(format string, v ...interface{})

	registry *prometheus.Registry
	server   *http.Server
	addr     net.Addr

	strategyTotal           *prometheus.CounterVec // strategies picked by the dispatcher
	shadersTotal            *prometheus.CounterVec // shaders generated
	synthesisDepth          prometheus.Histogram   // deepest nesting reached per shader
	functionsTotal          prometheus.Counter     // functions declared
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch
}

// Init some parameters - currently the Listen address.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	obj.registry = prometheus.NewRegistry()

	obj.strategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glfuzz_strategy_total",
			Help: "Number of times each synthesis strategy was picked.",
		},
		// Labels for this metric.
		// strategy: literal, variable, function, ...
		// declined: did the strategy decline to produce an expression
		[]string{"strategy", "declined"},
	)
	obj.shadersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glfuzz_shaders_total",
			Help: "Number of shaders generated.",
		},
		// errorful: did the generation fail
		[]string{"errorful"},
	)
	obj.synthesisDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glfuzz_synthesis_depth",
			Help:    "Deepest strategy nesting reached while generating a shader.",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		},
	)
	obj.functionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "glfuzz_functions_total",
			Help: "Number of functions declared by synthesis.",
		},
	)
	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glfuzz_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)

	for _, c := range []prometheus.Collector{
		obj.strategyTotal,
		obj.shadersTotal,
		obj.synthesisDepth,
		obj.functionsTotal,
		obj.processStartTimeSeconds,
	} {
		if err := obj.registry.Register(c); err != nil {
			return errwrap.Wrapf(err, "could not register metric")
		}
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Registry returns the registry that holds the metrics of this instance.
func (obj *Prometheus) Registry() *prometheus.Registry {
	return obj.registry
}

// Start runs a http server in a go routine, that responds to /metrics as
// prometheus would expect.
func (obj *Prometheus) Start() error {
	ln, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return errwrap.Wrapf(err, "could not listen on %s", obj.Listen)
	}
	obj.addr = ln.Addr()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{}))
	obj.server = &http.Server{Handler: mux}
	go obj.serve(ln)
	return nil
}

// serve runs the server until Stop, and logs any other reason it ends for.
func (obj *Prometheus) serve(ln net.Listener) {
	if err := obj.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		obj.Logf("prometheus: serve failed: %+v", err)
	}
}

// Addr returns the address the server is listening on, once it was started.
func (obj *Prometheus) Addr() net.Addr {
	return obj.addr
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	return obj.server.Shutdown(context.Background())
}

// UpdateStrategyTotal counts one pick of a synthesis strategy.
func (obj *Prometheus) UpdateStrategyTotal(strategy string, declined bool) error {
	labels := prometheus.Labels{"strategy": strategy, "declined": strconv.FormatBool(declined)}
	metric, err := obj.strategyTotal.GetMetricWith(labels)
	if err != nil {
		return errwrap.Wrapf(err, "could not get metric")
	}
	metric.Inc()
	return nil
}

// UpdateShadersTotal counts one generated shader.
func (obj *Prometheus) UpdateShadersTotal(errorful bool) error {
	labels := prometheus.Labels{"errorful": strconv.FormatBool(errorful)}
	metric, err := obj.shadersTotal.GetMetricWith(labels)
	if err != nil {
		return errwrap.Wrapf(err, "could not get metric")
	}
	metric.Inc()
	return nil
}

// ObserveDepth records the deepest nesting reached for one shader.
func (obj *Prometheus) ObserveDepth(depth int) {
	obj.synthesisDepth.Observe(float64(depth))
}

// IncFunctionsTotal counts one declared function.
func (obj *Prometheus) IncFunctionsTotal() {
	obj.functionsTotal.Inc()
}
