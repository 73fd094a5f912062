// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for proposal loading and
// notification read-state. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "govfeed"

type Metrics struct {
	phaseDuration *prometheus.HistogramVec
	cursorWrites  *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each proposal loading phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase", "outcome"}),
		cursorWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "readstate",
			Name:      "cursor_writes_total",
			Help:      "Read cursor persistence attempts.",
		}, []string{"outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "loader",
			Name:      "open_sessions",
			Help:      "Proposal viewing sessions currently open.",
		}),
	}
	reg.MustRegister(m.phaseDuration, m.cursorWrites, m.sessions)
	return m
}

// ObservePhase records how long a loading phase took and whether it failed.
func (m *Metrics) ObservePhase(phase string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase, outcome(err)).Observe(time.Since(start).Seconds())
}

// CursorWritten counts a read cursor persistence attempt.
func (m *Metrics) CursorWritten(err error) {
	if m == nil {
		return
	}
	m.cursorWrites.WithLabelValues(outcome(err)).Inc()
}

// SetSessions reports the number of open viewing sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
