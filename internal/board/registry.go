package board

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// Session bundles the state model of one dashboard owner.
type Session struct {
	Owner      string
	Controller *Controller
	Search     *SearchSession
	Status     *StatusMutator
	CreatedAt  time.Time
}

// Registry hands out per-owner sessions, creating them on first use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	client  statsapi.StatsClient
	cache   *query.Cache
	metrics metrics.Metrics
	usage   metrics.UsageStore
	quiet   time.Duration
	limit   int
}

// NewRegistry creates an empty registry. The quiet period applies to every
// session's search debouncer.
func NewRegistry(client statsapi.StatsClient, cache *query.Cache, m metrics.Metrics, usage metrics.UsageStore, quiet time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		client:   client,
		cache:    cache,
		metrics:  m,
		usage:    usage,
		quiet:    quiet,
		limit:    DefaultSearchMax,
	}
}

// Session returns the owner's session, creating it on first use. The
// status mutator is shared state-free machinery, but controller and search
// are per owner.
func (r *Registry) Session(owner string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[owner]; ok {
		return s
	}

	controller := NewController(r.client, r.cache)
	s := &Session{
		Owner:      owner,
		Controller: controller,
		Search:     NewSearchSession(controller, r.client, r.cache, r.metrics, r.usage, r.quiet, r.limit),
		Status:     NewStatusMutator(r.client, r.cache, r.metrics, r.usage),
		CreatedAt:  time.Now(),
	}
	r.sessions[owner] = s
	r.metrics.SetBoardSessions(float64(len(r.sessions)))
	log.Debug("Created board session", "owner", owner)
	return s
}

// Purge drops an owner's session and releases any pending search input.
func (r *Registry) Purge(owner string) {
	r.mu.Lock()
	s, ok := r.sessions[owner]
	if ok {
		delete(r.sessions, owner)
		r.metrics.SetBoardSessions(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if ok {
		s.Search.Cancel()
		log.Debug("Purged board session", "owner", owner)
	}
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
