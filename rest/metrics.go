// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// otherMethod is the method label for dispatches of methods with no
// registered resource.  The method itself comes from the client.
const otherMethod = "other"

// Metrics counts registry dispatches.  One Metrics is normally shared
// by every registry in a process.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the dispatch metrics with reg, or
// the default registerer if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diffeo",
				Subsystem: "rulesweb",
				Name:      "dispatches_total",
				Help:      "Dispatched operations by path, method, representation and outcome",
			},
			[]string{"path", "method", "representation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diffeo",
				Subsystem: "rulesweb",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent validating, running and rendering an operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.dispatches, m.duration)
	return m
}

// observe records one dispatch.  It does nothing on a nil Metrics.
func (m *Metrics) observe(path, method, outcome string, rep Representation, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.With(prometheus.Labels{
		"path":           path,
		"method":         method,
		"representation": rep.String(),
		"outcome":        outcome,
	}).Inc()
	m.duration.With(prometheus.Labels{
		"path":   path,
		"method": method,
	}).Observe(d.Seconds())
}
