package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_cache_hits_total",
			Help: "The total number of fresh cache hits, per query namespace.",
		}, []string{"namespace"}),
		CacheStaleHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_cache_stale_hits_total",
			Help: "The total number of stale cache hits served while revalidating.",
		}, []string{"namespace"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_cache_misses_total",
			Help: "The total number of cache misses requiring a blocking fetch.",
		}, []string{"namespace"}),
		RefreshSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_cache_refresh_success_total",
			Help: "The total number of background revalidations that succeeded.",
		}, []string{"namespace"}),
		RefreshFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_cache_refresh_failure_total",
			Help: "The total number of background revalidations that failed.",
		}, []string{"namespace"}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoutdeck_cache_invalidations_total",
			Help: "The total number of cache entries dropped by invalidation.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoutdeck_fetch_duration_seconds",
			Help:    "The duration of backend fetches, per query namespace.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"namespace"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_http_requests_total",
			Help: "The total number of gateway HTTP requests served.",
		}, []string{"route", "method", "status"}),
		SearchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoutdeck_searches_committed_total",
			Help: "The total number of debounced searches that reached the backend.",
		}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_status_updates_total",
			Help: "The total number of tracking-status mutations, by outcome.",
		}, []string{"outcome"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutdeck_uploads_total",
			Help: "The total number of tournament file uploads, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		BoardSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scoutdeck_board_sessions",
			Help: "The number of live per-owner board sessions.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scoutdeck_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CacheHits,
		s.CacheStaleHits,
		s.CacheMisses,
		s.RefreshSuccess,
		s.RefreshFailure,
		s.CacheInvalidations,
		s.FetchDuration,
		s.HTTPRequests,
		s.SearchesCommitted,
		s.StatusUpdates,
		s.Uploads,
		s.BoardSessions,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCacheHit(namespace string) {
	s.CacheHits.WithLabelValues(namespace).Inc()
}

func (s *Service) IncCacheStale(namespace string) {
	s.CacheStaleHits.WithLabelValues(namespace).Inc()
}

func (s *Service) IncCacheMiss(namespace string) {
	s.CacheMisses.WithLabelValues(namespace).Inc()
}

func (s *Service) IncRefreshSucceeded(namespace string) {
	s.RefreshSuccess.WithLabelValues(namespace).Inc()
}

func (s *Service) IncRefreshFailed(namespace string) {
	s.RefreshFailure.WithLabelValues(namespace).Inc()
}

func (s *Service) AddInvalidations(count int) {
	s.CacheInvalidations.Add(float64(count))
}

func (s *Service) ObserveFetchDuration(namespace string, seconds float64) {
	s.FetchDuration.WithLabelValues(namespace).Observe(seconds)
}

func (s *Service) IncHTTPRequest(route, method string, status int) {
	s.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (s *Service) IncSearchCommitted() {
	s.SearchesCommitted.Inc()
}

func (s *Service) IncStatusUpdate(outcome string) {
	s.StatusUpdates.WithLabelValues(outcome).Inc()
}

func (s *Service) IncUpload(kind, outcome string) {
	s.Uploads.WithLabelValues(kind, outcome).Inc()
}

func (s *Service) SetBoardSessions(count float64) {
	s.BoardSessions.Set(count)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
