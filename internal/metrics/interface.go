package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCacheHit(namespace string)
	IncCacheStale(namespace string)
	IncCacheMiss(namespace string)
	IncRefreshSucceeded(namespace string)
	IncRefreshFailed(namespace string)
	AddInvalidations(count int)
	ObserveFetchDuration(namespace string, seconds float64)
	IncHTTPRequest(route, method string, status int)
	IncSearchCommitted()
	IncStatusUpdate(outcome string)
	IncUpload(kind, outcome string)
	SetBoardSessions(count float64)
	SetStartupTime(seconds float64)
}

// UsageStore persists coarse usage counters across restarts. Prometheus
// counters reset with the process; these do not.
type UsageStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
