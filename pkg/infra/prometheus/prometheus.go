package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

// Latency buckets in milliseconds.
var latencyBuckets = []float64{
	1, 5, 10,
	25, 50, 100,
	250, 500, 1000,
	2500, 5000,
}

var (
	SessionsCreatedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "beamdrop_sessions_created_total",
			Help: "Total number of pairing sessions created",
		},
	)

	SessionsExpiredTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "beamdrop_sessions_expired_total",
			Help: "Total number of sessions reaped after expiry",
		},
	)

	SessionsActive = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "beamdrop_sessions_active",
			Help: "Number of currently active sessions",
		},
	)

	ItemsRelayedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "beamdrop_items_relayed_total",
			Help: "Total number of content items accepted for relay",
		},
		[]string{"kind"},
	)

	StreamsOpen = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "beamdrop_streams_open",
			Help: "Number of open subscriber streams",
		},
	)

	StreamEventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "beamdrop_stream_events_total",
			Help: "Total number of events pushed to subscriber streams",
		},
		[]string{"type"},
	)

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "beamdrop_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beamdrop_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method", "path"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
