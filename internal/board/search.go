package board

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// SearchState is where a live search currently stands.
type SearchState string

const (
	SearchIdle   SearchState = "idle"
	SearchPrompt SearchState = "prompt"
	SearchTyping SearchState = "typing"
	SearchDone   SearchState = "done"
	SearchError  SearchState = "error"
)

// SearchView is the session's answer to one input event.
type SearchView struct {
	State   SearchState
	Query   string
	Results *statsapi.SearchResponse
	Stale   bool
}

// SearchSession turns a stream of keystrokes into at most one committed
// backend search per quiet period. Inputs below the minimum length never
// reach the network.
type SearchSession struct {
	debounce   *Debouncer
	controller *Controller
	client     statsapi.StatsClient
	cache      *query.Cache
	metrics    metrics.Metrics
	usage      metrics.UsageStore
	limit      int
}

// NewSearchSession wires a session to its owner's controller.
func NewSearchSession(controller *Controller, client statsapi.StatsClient, cache *query.Cache, m metrics.Metrics, usage metrics.UsageStore, quiet time.Duration, limit int) *SearchSession {
	if limit <= 0 {
		limit = DefaultSearchMax
	}
	return &SearchSession{
		debounce:   NewDebouncer(quiet),
		controller: controller,
		client:     client,
		cache:      cache,
		metrics:    m,
		usage:      usage,
		limit:      limit,
	}
}

// Input submits the current raw text. Short inputs cancel pending work and
// return a prompt state; longer ones wait out the quiet period and either
// get superseded (typing) or committed (done/error).
func (s *SearchSession) Input(ctx context.Context, raw string) (SearchView, error) {
	text := strings.TrimSpace(raw)
	if len([]rune(text)) < MinSearchQueryLen {
		s.debounce.Cancel()
		if text == "" {
			return SearchView{State: SearchIdle}, nil
		}
		return SearchView{State: SearchPrompt, Query: text}, nil
	}

	outcome := <-s.debounce.Trigger(text)
	if !outcome.Committed {
		return SearchView{State: SearchTyping, Query: text}, nil
	}
	return s.commit(ctx, outcome.Value)
}

// Cancel drops any pending input.
func (s *SearchSession) Cancel() {
	s.debounce.Cancel()
}

func (s *SearchSession) commit(ctx context.Context, text string) (SearchView, error) {
	s.metrics.IncSearchCommitted()
	s.usage.Increment(metrics.UsageSearches)
	s.controller.SetSearch(text)
	log.Debug("Committing search", "query", text)

	params := statsapi.SearchParams{
		Query:        text,
		TournamentID: s.controller.State().Filters.TournamentID,
		Limit:        s.limit,
	}
	res, err := query.Lookup(ctx, s.cache, query.SearchKey(params), query.Options{}, func(ctx context.Context) (statsapi.SearchResponse, error) {
		return s.client.SearchPlayers(ctx, params)
	})
	if err != nil {
		return SearchView{State: SearchError, Query: text}, err
	}

	resp := res.Value
	return SearchView{
		State:   SearchDone,
		Query:   text,
		Results: &resp,
		Stale:   res.Stale,
	}, nil
}
