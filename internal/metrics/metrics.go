// Package metrics registers the process-wide Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "climaneer_polls_total",
		Help: "Completed poll cycles against the remote store.",
	})
	PollsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "climaneer_polls_failed_total",
		Help: "Poll cycles that ended in a transport failure.",
	})
	AlertsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaneer_alerts_fired_total",
		Help: "Alerts fired by the alert engine, by severity.",
	}, []string{"type"})
	PumpToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "climaneer_pump_toggles_total",
		Help: "Pump toggle writes, by requested state and outcome.",
	}, []string{"state", "outcome"})
	ScheduledActivations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "climaneer_scheduled_activations_total",
		Help: "Pump activations performed by the scheduler.",
	})
	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "climaneer_online",
		Help: "1 while the last poll against the remote store succeeded.",
	})
	BreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "climaneer_breaker_open",
		Help: "1 while the remote store circuit breaker is open.",
	})
)
