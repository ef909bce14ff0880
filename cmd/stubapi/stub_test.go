package main

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

func fixtureDataset() *dataset {
	d := &dataset{tournaments: make([]statsapi.Tournament, len(tournamentSeed))}
	copy(d.tournaments, tournamentSeed)
	d.players = []statsapi.Player{
		{
			ID: "p-petrov", PlayerName: "Ivan Petrov", TeamName: "Dynamo", Position: "FW",
			TournamentID: 1, Goals: 12, Assists: 3, Shots: 40, PassesTotal: 310,
			MinutesPlayed: 1800, Age: 19, XG: 9.4, PlayerIndex: 7.1, PassesAccuracy: 81.5,
			TrackingStatus: statsapi.StatusToWatch,
			CreatedAt:      "2026-03-01T10:00:00", UpdatedAt: "2026-03-01T10:00:00",
		},
		{
			ID: "p-kral", PlayerName: "Ivan Kral", TeamName: "Torpedo", Position: "MF",
			TournamentID: 1, Goals: 0, Assists: 7, Shots: 10, PassesTotal: 950,
			MinutesPlayed: 900, Age: 17, XG: 1.1, PlayerIndex: 6.2, PassesAccuracy: 88.0,
			TrackingStatus: statsapi.StatusNonInteresting,
			CreatedAt:      "2026-03-02T10:00:00", UpdatedAt: "2026-03-02T10:00:00",
		},
		{
			ID: "p-melnik", PlayerName: "Ivan Melnik", TeamName: "Rodina", Position: "DF",
			TournamentID: 2, Goals: 2, Assists: 0, Shots: 5, PassesTotal: 400,
			MinutesPlayed: 0, Age: 18, PlayerIndex: 4.0, PassesAccuracy: 74.2,
			TrackingStatus: statsapi.StatusInteresting,
			CreatedAt:      "2026-03-03T10:00:00", UpdatedAt: "2026-03-03T10:00:00",
		},
		{
			ID: "p-vidal", PlayerName: "Marco Vidal", TeamName: "Dynamo", Position: "FW",
			TournamentID: 2, Goals: 8, Assists: 2, Shots: 25, PassesTotal: 280,
			MinutesPlayed: 900, Age: 20, XG: 6.8, PlayerIndex: 6.9, PassesAccuracy: 79.3,
			TrackingStatus: statsapi.StatusNonInteresting,
			CreatedAt:      "2026-03-04T10:00:00", UpdatedAt: "2026-03-04T10:00:00",
		},
	}
	return d
}

func intPtr(n int) *int { return &n }

func TestSeedDataset(t *testing.T) {
	t.Run("default spread matches the league sizes", func(t *testing.T) {
		d := seedDataset(rand.New(rand.NewSource(1)), 0)
		assert.Equal(t, 355, d.size())

		counts := map[int]int{}
		for _, tour := range d.listTournaments() {
			counts[tour.ID] = tour.PlayersCount
		}
		assert.Equal(t, map[int]int{1: 120, 2: 80, 3: 95, 4: 60}, counts)
	})

	t.Run("explicit total splits round robin", func(t *testing.T) {
		d := seedDataset(rand.New(rand.NewSource(1)), 40)
		for _, tour := range d.listTournaments() {
			assert.Equal(t, 10, tour.PlayersCount, tour.Name)
		}
	})

	t.Run("same seed gives the same players", func(t *testing.T) {
		a := seedDataset(rand.New(rand.NewSource(7)), 12)
		b := seedDataset(rand.New(rand.NewSource(7)), 12)
		require.Equal(t, a.size(), b.size())
		assert.Equal(t, a.players[0].ID, b.players[0].ID)
		assert.Equal(t, a.players[11].PlayerName, b.players[11].PlayerName)
	})

	t.Run("generated rows stay coherent", func(t *testing.T) {
		d := seedDataset(rand.New(rand.NewSource(3)), 200)
		for _, pl := range d.players {
			assert.True(t, pl.TrackingStatus.Known(), pl.ID)
			assert.Contains(t, []string{"GK", "DF", "MF", "FW"}, pl.Position)
			assert.LessOrEqual(t, pl.ShotsOnTarget, pl.Shots, pl.ID)
			if pl.MinutesPlayed < 90 {
				assert.Zero(t, pl.Goals, pl.ID)
			}
		}
	})
}

func TestListSemantics(t *testing.T) {
	d := fixtureDataset()

	t.Run("filters combine", func(t *testing.T) {
		list := d.list(statsapi.PlayerListParams{MinGoals: intPtr(5)})
		require.Len(t, list.Data, 2)

		list = d.list(statsapi.PlayerListParams{MinGoals: intPtr(5), TournamentID: intPtr(1)})
		require.Len(t, list.Data, 1)
		assert.Equal(t, "Ivan Petrov", list.Data[0].PlayerName)
	})

	t.Run("sorting honors field and order", func(t *testing.T) {
		list := d.list(statsapi.PlayerListParams{SortField: "goals", SortOrder: "desc"})
		require.Len(t, list.Data, 4)
		assert.Equal(t, []string{"p-petrov", "p-vidal", "p-melnik", "p-kral"},
			[]string{list.Data[0].ID, list.Data[1].ID, list.Data[2].ID, list.Data[3].ID})
	})

	t.Run("envelope invariant holds past the last page", func(t *testing.T) {
		list := d.list(statsapi.PlayerListParams{Page: 9, PerPage: 3})
		assert.Empty(t, list.Data)
		assert.Equal(t, 4, list.Total)
		assert.Equal(t, 2, list.TotalPages)
		assert.Equal(t, 9, list.Page)
	})

	t.Run("page size defaults and caps", func(t *testing.T) {
		list := d.list(statsapi.PlayerListParams{})
		assert.Equal(t, defaultPerPage, list.PerPage)

		list = d.list(statsapi.PlayerListParams{PerPage: 9999})
		assert.Equal(t, maxPerPage, list.PerPage)
	})

	t.Run("team and search filters fold case", func(t *testing.T) {
		list := d.list(statsapi.PlayerListParams{TeamName: "dynamo"})
		assert.Equal(t, 2, list.Total)

		list = d.list(statsapi.PlayerListParams{SearchQuery: "PETR"})
		require.Len(t, list.Data, 1)
		assert.Equal(t, "p-petrov", list.Data[0].ID)
	})
}

func TestSearchOrdering(t *testing.T) {
	d := fixtureDataset()

	t.Run("shortest name wins ties by name", func(t *testing.T) {
		resp := d.search(statsapi.SearchParams{Query: "ivan"})
		require.Equal(t, 3, resp.TotalFound)
		require.Len(t, resp.Results, 3)
		assert.Equal(t, "Ivan Kral", resp.Results[0].PlayerName)
		assert.Equal(t, "Ivan Melnik", resp.Results[1].PlayerName)
		assert.Equal(t, "Ivan Petrov", resp.Results[2].PlayerName)
	})

	t.Run("limit truncates but total_found counts all", func(t *testing.T) {
		resp := d.search(statsapi.SearchParams{Query: "ivan", Limit: 2})
		assert.Equal(t, 3, resp.TotalFound)
		assert.Len(t, resp.Results, 2)
	})

	t.Run("tournament filter narrows the pool", func(t *testing.T) {
		resp := d.search(statsapi.SearchParams{Query: "ivan", TournamentID: intPtr(2)})
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "p-melnik", resp.Results[0].ID)
		assert.Equal(t, statsapi.StatusInteresting, resp.Results[0].CurrentStatus)
	})
}

func TestLeaderboards(t *testing.T) {
	d := fixtureDataset()

	t.Run("zero metric players stay off the board", func(t *testing.T) {
		top := d.top(statsapi.TopParams{})
		for _, row := range top.Goals {
			assert.NotEqual(t, "p-kral", row.ID)
		}
		for _, row := range top.Assists {
			assert.NotEqual(t, "p-melnik", row.ID)
		}
	})

	t.Run("per 90 rate is rounded and guards zero minutes", func(t *testing.T) {
		top := d.top(statsapi.TopParams{})
		require.Len(t, top.Goals, 3)
		assert.Equal(t, "p-petrov", top.Goals[0].ID)
		assert.Equal(t, 0.6, top.Goals[0].Per90Value)
		assert.Equal(t, "p-vidal", top.Goals[1].ID)
		assert.Equal(t, 0.8, top.Goals[1].Per90Value)
		assert.Equal(t, "p-melnik", top.Goals[2].ID)
		assert.Equal(t, 0.0, top.Goals[2].Per90Value)
	})

	t.Run("limit and period default", func(t *testing.T) {
		top := d.top(statsapi.TopParams{Limit: 1})
		assert.Len(t, top.Goals, 1)
		assert.Equal(t, statsapi.PeriodAllTime, top.Period)

		top = d.top(statsapi.TopParams{Period: statsapi.PeriodLastRound})
		assert.Equal(t, statsapi.PeriodLastRound, top.Period)
	})
}

func TestTournamentStatsAggregation(t *testing.T) {
	d := fixtureDataset()

	stats, ok := d.stats(1)
	require.True(t, ok)
	assert.Equal(t, 2, stats.TotalPlayers)
	assert.Equal(t, 2, stats.TeamsCount)
	assert.Equal(t, 2, stats.PositionsCount)
	assert.Equal(t, 1, stats.TrackedPlayers)
	assert.Equal(t, 12, stats.Totals["goals"])
	assert.Equal(t, 10, stats.Totals["assists"])
	assert.Equal(t, 18.0, stats.Averages["age"])
	require.Len(t, stats.TopScorers, 1)
	assert.Equal(t, "p-petrov", stats.TopScorers[0].ID)

	_, ok = d.stats(9)
	assert.False(t, ok)
}

func TestStatusUpdateAndClear(t *testing.T) {
	d := fixtureDataset()

	t.Run("status change reports the previous value", func(t *testing.T) {
		change, ok := d.updateStatus("p-petrov", statsapi.StatusMyPlayer, "signed the watch list")
		require.True(t, ok)
		assert.Equal(t, statsapi.StatusToWatch, change.PreviousStatus)
		assert.Equal(t, statsapi.StatusMyPlayer, change.NewStatus)

		player, ok := d.get("p-petrov")
		require.True(t, ok)
		assert.Equal(t, statsapi.StatusMyPlayer, player.TrackingStatus)
		assert.Equal(t, "signed the watch list", player.Notes)
	})

	t.Run("unknown player is reported", func(t *testing.T) {
		_, ok := d.updateStatus("nope", statsapi.StatusInteresting, "")
		assert.False(t, ok)
	})

	t.Run("clear removes a tournament's players only", func(t *testing.T) {
		report, ok := d.clear(1)
		require.True(t, ok)
		assert.Equal(t, 2, report.PlayersRemoved)

		for _, tour := range d.listTournaments() {
			if tour.ID == 1 {
				assert.Zero(t, tour.PlayersCount)
			}
			if tour.ID == 2 {
				assert.Equal(t, 2, tour.PlayersCount)
			}
		}
	})

	t.Run("upload on an empty tournament derives rows from size", func(t *testing.T) {
		report, ok := d.upload(1, "mfl_total.xlsx", 1000)
		require.True(t, ok)
		assert.Equal(t, 4, report.TotalRows)
		assert.Equal(t, statsapi.TableDelta{Added: 4}, report.MainTable)
	})
}

func newStubRecorder(t *testing.T, d *dataset, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := newRouter(&stubServer{data: d}, 0)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeAs[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func TestStubRoutes(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		rr := newStubRecorder(t, fixtureDataset(), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rr.Code)
		status := decodeAs[statsapi.HealthStatus](t, rr)
		assert.Equal(t, "ok", status.Status)
	})

	t.Run("player list pages over the wire", func(t *testing.T) {
		rr := newStubRecorder(t, fixtureDataset(), http.MethodGet, "/players?tournament_id=1&per_page=1&page=2", "")
		require.Equal(t, http.StatusOK, rr.Code)
		list := decodeAs[statsapi.PlayerList](t, rr)
		assert.Equal(t, 2, list.Total)
		assert.Equal(t, 2, list.TotalPages)
		assert.Len(t, list.Data, 1)
	})

	t.Run("bad integer params are rejected", func(t *testing.T) {
		rr := newStubRecorder(t, fixtureDataset(), http.MethodGet, "/players?min_goals=lots", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "bad_request", apiErr.Code)
	})

	t.Run("player detail and misses", func(t *testing.T) {
		d := fixtureDataset()
		rr := newStubRecorder(t, d, http.MethodGet, "/players/p-vidal", "")
		require.Equal(t, http.StatusOK, rr.Code)
		detail := decodeAs[statsapi.PlayerDetail](t, rr)
		assert.Equal(t, "Marco Vidal", detail.Data.PlayerName)

		rr = newStubRecorder(t, d, http.MethodGet, "/players/ghost", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "player_not_found", apiErr.Code)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})

	t.Run("status mutation round trip", func(t *testing.T) {
		d := fixtureDataset()
		rr := newStubRecorder(t, d, http.MethodPut, "/players/p-kral/status", `{"tracking_status":"interesting","notes":"worth a look"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		change := decodeAs[statsapi.StatusChange](t, rr)
		assert.Equal(t, statsapi.StatusNonInteresting, change.PreviousStatus)
		assert.Equal(t, statsapi.StatusInteresting, change.NewStatus)

		rr = newStubRecorder(t, d, http.MethodPut, "/players/p-kral/status", `{"tracking_status":"benched"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "unknown_status", apiErr.Code)
	})

	t.Run("short search queries are rejected", func(t *testing.T) {
		rr := newStubRecorder(t, fixtureDataset(), http.MethodGet, "/players/search?query=a", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "query_too_short", apiErr.Code)
	})

	t.Run("clear requires confirmation", func(t *testing.T) {
		d := fixtureDataset()
		rr := newStubRecorder(t, d, http.MethodDelete, "/tournaments/1/players", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "confirm_required", apiErr.Code)

		rr = newStubRecorder(t, d, http.MethodDelete, "/tournaments/1/players?confirm=true", "")
		require.Equal(t, http.StatusOK, rr.Code)
		report := decodeAs[statsapi.ClearReport](t, rr)
		assert.Equal(t, 2, report.PlayersRemoved)
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		rr := newStubRecorder(t, fixtureDataset(), http.MethodGet, "/top-performers?period=weekly", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "unknown_period", apiErr.Code)
	})
}

func TestStubUploadRoute(t *testing.T) {
	buildBody := func(t *testing.T, kind string, withFile bool) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("kind", kind))
		require.NoError(t, w.WriteField("season", "2025/26"))
		require.NoError(t, w.WriteField("round", "7"))
		if withFile {
			part, err := w.CreateFormFile("file", "mfl_round7_total.xlsx")
			require.NoError(t, err)
			_, err = part.Write(bytes.Repeat([]byte("row;"), 200))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	send := func(t *testing.T, d *dataset, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		t.Helper()
		router := newRouter(&stubServer{data: d}, 0)
		req := httptest.NewRequest(http.MethodPost, target, body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("accepts a file and reports touched rows", func(t *testing.T) {
		body, contentType := buildBody(t, "total", true)
		rr := send(t, fixtureDataset(), "/tournaments/1/upload", body, contentType)
		require.Equal(t, http.StatusOK, rr.Code)
		report := decodeAs[statsapi.UploadReport](t, rr)
		assert.Equal(t, "mfl_round7_total.xlsx", report.FileName)
		assert.Equal(t, 1, report.TournamentID)
		assert.Equal(t, 2, report.TotalRows)
		assert.Equal(t, statsapi.TableDelta{Updated: 2}, report.MainTable)
		assert.NotEmpty(t, report.UploadTime)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		body, contentType := buildBody(t, "weekly", true)
		rr := send(t, fixtureDataset(), "/tournaments/1/upload", body, contentType)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "unknown_kind", apiErr.Code)
	})

	t.Run("rejects a missing file part", func(t *testing.T) {
		body, contentType := buildBody(t, "total", false)
		rr := send(t, fixtureDataset(), "/tournaments/1/upload", body, contentType)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "missing_file", apiErr.Code)
	})

	t.Run("unknown tournament is reported", func(t *testing.T) {
		body, contentType := buildBody(t, "per90", true)
		rr := send(t, fixtureDataset(), "/tournaments/42/upload", body, contentType)
		require.Equal(t, http.StatusNotFound, rr.Code)
		apiErr := decodeAs[statsapi.APIError](t, rr)
		assert.Equal(t, "tournament_not_found", apiErr.Code)
	})
}
