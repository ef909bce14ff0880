package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu             sync.Mutex
	cacheHits      map[string]int
	cacheStale     map[string]int
	cacheMisses    map[string]int
	refreshOK      map[string]int
	refreshFailed  map[string]int
	invalidations  int
	fetchDurations map[string][]float64
	httpRequests   int
	searches       int
	statusUpdates  map[string]int
	uploads        map[string]int
	boardSessions  float64
	startupTime    float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		cacheHits:      make(map[string]int),
		cacheStale:     make(map[string]int),
		cacheMisses:    make(map[string]int),
		refreshOK:      make(map[string]int),
		refreshFailed:  make(map[string]int),
		fetchDurations: make(map[string][]float64),
		statusUpdates:  make(map[string]int),
		uploads:        make(map[string]int),
	}
}

var _ Metrics = (*Mock)(nil)

func (m *Mock) IncCacheHit(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits[namespace]++
}

func (m *Mock) IncCacheStale(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheStale[namespace]++
}

func (m *Mock) IncCacheMiss(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses[namespace]++
}

func (m *Mock) IncRefreshSucceeded(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshOK[namespace]++
}

func (m *Mock) IncRefreshFailed(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshFailed[namespace]++
}

func (m *Mock) AddInvalidations(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations += count
}

func (m *Mock) ObserveFetchDuration(namespace string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchDurations[namespace] = append(m.fetchDurations[namespace], seconds)
}

func (m *Mock) IncHTTPRequest(route, method string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpRequests++
}

func (m *Mock) IncSearchCommitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
}

func (m *Mock) IncStatusUpdate(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates[outcome]++
}

func (m *Mock) IncUpload(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[kind+"/"+outcome]++
}

func (m *Mock) SetBoardSessions(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boardSessions = count
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// CacheHits returns the number of fresh hits recorded for a namespace.
func (m *Mock) CacheHits(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheHits[namespace]
}

// CacheStaleHits returns the number of stale hits recorded for a namespace.
func (m *Mock) CacheStaleHits(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheStale[namespace]
}

// CacheMisses returns the number of misses recorded for a namespace.
func (m *Mock) CacheMisses(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheMisses[namespace]
}

// RefreshesSucceeded returns the successful revalidations for a namespace.
func (m *Mock) RefreshesSucceeded(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshOK[namespace]
}

// RefreshesFailed returns the failed revalidations for a namespace.
func (m *Mock) RefreshesFailed(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshFailed[namespace]
}

// Invalidations returns the total invalidated entry count.
func (m *Mock) Invalidations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidations
}

// SearchesCommitted returns the number of committed searches.
func (m *Mock) SearchesCommitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

// StatusUpdates returns the count recorded for an outcome.
func (m *Mock) StatusUpdates(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusUpdates[outcome]
}

// Uploads returns the count recorded for a kind/outcome pair.
func (m *Mock) Uploads(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads[kind+"/"+outcome]
}

// BoardSessions returns the last recorded session gauge value.
func (m *Mock) BoardSessions() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boardSessions
}

// MockUsage is an in-memory UsageStore for testing.
type MockUsage struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockUsage creates a new mock usage store.
func NewMockUsage() *MockUsage {
	return &MockUsage{counters: make(map[string]int)}
}

var _ UsageStore = (*MockUsage)(nil)

func (m *MockUsage) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockUsage) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}

// Counter reads one counter without the error plumbing of GetAll.
func (m *MockUsage) Counter(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}
