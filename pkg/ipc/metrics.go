package ipc

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricHTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webdriverd",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by the wire front end.",
	}, []string{"method", "route", "code"})
	metricHTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "webdriverd",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	metricEventStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "webdriverd",
		Subsystem: "http",
		Name:      "event_streams_active",
		Help:      "Connected event stream clients.",
	})
)

func observeRequest(method, route string, status int, elapsed time.Duration) {
	if status == 0 {
		status = 200
	}
	metricHTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	metricHTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
