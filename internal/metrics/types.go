package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	CacheHits          *prometheus.CounterVec
	CacheStaleHits     *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	RefreshSuccess     *prometheus.CounterVec
	RefreshFailure     *prometheus.CounterVec
	CacheInvalidations prometheus.Counter
	FetchDuration      *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	SearchesCommitted  prometheus.Counter
	StatusUpdates      *prometheus.CounterVec
	Uploads            *prometheus.CounterVec
	BoardSessions      prometheus.Gauge
	StartupTimeSeconds prometheus.Gauge
}
