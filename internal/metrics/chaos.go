package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	chaosDelay = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chaos",
			Name:      "injected_delay_seconds",
			Help:      "模拟网关注入的人工延迟（秒）。",
			Buckets:   []float64{0, 0.1, 0.2, 0.4, 0.6, 0.8, 1, 1.2, 2},
		},
		[]string{"route"},
	)

	chaosFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chaos",
			Name:      "injected_failures_total",
			Help:      "模拟网关注入的失败响应数。",
		},
		[]string{"route", "code"},
	)
)

// ObserveChaosDelay records the artificial latency applied to a route.
func ObserveChaosDelay(route string, d time.Duration) {
	register()
	chaosDelay.WithLabelValues(route).Observe(d.Seconds())
}

// IncChaosFailure counts a simulated failure for a route.
func IncChaosFailure(route, code string) {
	register()
	chaosFailures.WithLabelValues(route, code).Inc()
}
