package board

import (
	"context"
	"testing"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"
)

type searchDeps struct {
	controller *Controller
	client     *statsapi.MockClient
	metr       *metrics.Mock
	usage      *metrics.MockUsage
}

func setupSearch(t *testing.T, quiet time.Duration) (*SearchSession, searchDeps) {
	t.Helper()
	deps := searchDeps{
		client: statsapi.NewMockClient(),
		metr:   metrics.NewMock(),
		usage:  metrics.NewMockUsage(),
	}
	cache := query.New(deps.metr, query.WithRetryBackoff(time.Millisecond))
	deps.controller = NewController(deps.client, cache)
	session := NewSearchSession(deps.controller, deps.client, cache, deps.metr, deps.usage, quiet, 5)
	return session, deps
}

func TestSearch_ShortInputsNeverTouchTheNetwork(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		state SearchState
		query string
	}{
		{"empty input is idle", "", SearchIdle, ""},
		{"single character prompts for more", "a", SearchPrompt, "a"},
		{"whitespace does not count", " a  ", SearchPrompt, "a"},
		{"length is measured in runes", "é", SearchPrompt, "é"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session, deps := setupSearch(t, time.Millisecond)

			view, err := session.Input(context.Background(), tc.raw)

			require.NoError(t, err)
			assert.Equal(t, tc.state, view.State)
			assert.Equal(t, tc.query, view.Query)
			assert.Nil(t, view.Results)
			assert.Empty(t, deps.client.SearchPlayersCalls)
			assert.Equal(t, 0, deps.metr.SearchesCommitted())
		})
	}
}

func TestSearch_BurstCommitsOnlyTheFinalQuery(t *testing.T) {
	session, deps := setupSearch(t, 40*time.Millisecond)

	type result struct {
		view SearchView
		err  error
	}
	first := make(chan result, 1)
	go func() {
		v, err := session.Input(context.Background(), "iv")
		first <- result{v, err}
	}()
	time.Sleep(10 * time.Millisecond)

	view, err := session.Input(context.Background(), "ivan")
	require.NoError(t, err)
	assert.Equal(t, SearchDone, view.State)
	assert.Equal(t, "ivan", view.Query)

	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, SearchTyping, r.view.State, "superseded input must not commit")
	assert.Equal(t, "iv", r.view.Query)

	require.Len(t, deps.client.SearchPlayersCalls, 1)
	assert.Equal(t, "ivan", deps.client.SearchPlayersCalls[0].Query)
	assert.Equal(t, 1, deps.metr.SearchesCommitted())
}

func TestSearch_ShortInputCancelsPendingWork(t *testing.T) {
	session, deps := setupSearch(t, 60*time.Millisecond)

	pending := make(chan SearchView, 1)
	go func() {
		v, _ := session.Input(context.Background(), "iva")
		pending <- v
	}()
	time.Sleep(15 * time.Millisecond)

	// Backspacing below the minimum drops the pending query entirely.
	view, err := session.Input(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, SearchPrompt, view.State)

	v := <-pending
	assert.Equal(t, SearchTyping, v.State)

	time.Sleep(2 * 60 * time.Millisecond)
	assert.Empty(t, deps.client.SearchPlayersCalls)
	assert.Equal(t, 0, deps.metr.SearchesCommitted())
}

func TestSearch_CommitAppliesFilterAndCaches(t *testing.T) {
	session, deps := setupSearch(t, time.Millisecond)
	deps.controller.ApplyFilters(Filters{TournamentID: pointer.Int(2)})
	require.NoError(t, deps.controller.SetPage(3))

	view, err := session.Input(context.Background(), "ivan")
	require.NoError(t, err)
	assert.Equal(t, SearchDone, view.State)
	require.NotNil(t, view.Results)
	assert.Equal(t, "ivan", view.Results.Query)
	assert.False(t, view.Stale)

	// The committed query became the list filter and rewound the page.
	state := deps.controller.State()
	assert.Equal(t, "ivan", state.Filters.Search)
	assert.Equal(t, 1, state.Page)

	require.Len(t, deps.client.SearchPlayersCalls, 1)
	call := deps.client.SearchPlayersCalls[0]
	assert.Equal(t, "ivan", call.Query)
	require.NotNil(t, call.TournamentID)
	assert.Equal(t, 2, *call.TournamentID)
	assert.Equal(t, 5, call.Limit)

	assert.Equal(t, 1, deps.metr.SearchesCommitted())
	assert.Equal(t, 1, deps.usage.Counter(metrics.UsageSearches))

	// Re-committing the same query within the TTL is served from cache.
	view, err = session.Input(context.Background(), "ivan")
	require.NoError(t, err)
	assert.Equal(t, SearchDone, view.State)
	assert.Len(t, deps.client.SearchPlayersCalls, 1)
	assert.Equal(t, 2, deps.metr.SearchesCommitted())
}

func TestSearch_BackendFailureReportsErrorState(t *testing.T) {
	session, deps := setupSearch(t, time.Millisecond)
	deps.client.SearchPlayersFunc = func(statsapi.SearchParams) (statsapi.SearchResponse, error) {
		return statsapi.SearchResponse{}, &statsapi.APIError{StatusCode: 503, Message: "search backend down"}
	}

	view, err := session.Input(context.Background(), "ivan")

	require.Error(t, err)
	assert.Equal(t, SearchError, view.State)
	assert.Equal(t, "ivan", view.Query)
	assert.Nil(t, view.Results)
	// One retry after the initial attempt.
	assert.Len(t, deps.client.SearchPlayersCalls, 2)
	assert.Equal(t, 1, deps.metr.SearchesCommitted())
}
