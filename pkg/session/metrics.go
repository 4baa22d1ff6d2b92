package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "webdriverd",
		Name:      "sessions_active",
		Help:      "Number of live driver sessions.",
	})
	metricSessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdriverd",
		Name:      "sessions_closed_total",
		Help:      "Sessions removed, by reason.",
	}, []string{"reason"})
	metricCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdriverd",
		Name:      "commands_total",
		Help:      "Dispatched commands by command name and wire status.",
	}, []string{"command", "status"})
	metricCommandLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webdriverd",
		Name:      "command_duration_seconds",
		Help:      "Time from submission to response, including navigation waits.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"command"})
	metricNavigationPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdriverd",
		Name:      "navigation_polls_total",
		Help:      "Navigation readiness polls by outcome.",
	}, []string{"outcome"})
)

func observeNavigationPoll(settled bool) {
	outcome := "pending"
	if settled {
		outcome = "settled"
	}
	metricNavigationPolls.WithLabelValues(outcome).Inc()
}
