package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// queryIntPtr reads an optional integer query parameter. Absent means nil.
func queryIntPtr(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return &n, nil
}

// queryIntDefault reads an integer query parameter, falling back when absent.
func queryIntDefault(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func parsePageAndSize(r *http.Request) (page, perPage int, err error) {
	page, err = queryIntDefault(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("page must be >= 1, got %d", page)
	}
	perPage, err = queryIntDefault(r, "per_page", board.DefaultPerPage)
	if err != nil {
		return 0, 0, err
	}
	if perPage < 1 || perPage > board.MaxPerPage {
		return 0, 0, fmt.Errorf("per_page must be between 1 and %d, got %d", board.MaxPerPage, perPage)
	}
	return page, perPage, nil
}

func parsePlayerListParams(r *http.Request) (statsapi.PlayerListParams, error) {
	q := r.URL.Query()
	params := statsapi.PlayerListParams{
		TeamName:    q.Get("team_name"),
		Position:    q.Get("position"),
		SearchQuery: q.Get("search_query"),
		SortField:   q.Get("sort_field"),
		SortOrder:   q.Get("sort_order"),
	}

	if raw := q.Get("tracking_status"); raw != "" {
		status := statsapi.TrackingStatus(raw)
		if !status.Known() {
			return params, fmt.Errorf("tracking_status %q is not one of the known statuses", raw)
		}
		params.TrackingStatus = status
	}

	if params.SortField == "" {
		params.SortField = board.DefaultSortField
	} else if !board.KnownSortField(params.SortField) {
		return params, fmt.Errorf("sort_field %q is not sortable", params.SortField)
	}
	switch params.SortOrder {
	case "":
		params.SortOrder = "asc"
	case "asc", "desc":
	default:
		return params, fmt.Errorf("sort_order must be asc or desc, got %q", params.SortOrder)
	}

	var err error
	if params.TournamentID, err = queryIntPtr(r, "tournament_id"); err != nil {
		return params, err
	}
	if params.MinGoals, err = queryIntPtr(r, "min_goals"); err != nil {
		return params, err
	}
	if params.MinAssists, err = queryIntPtr(r, "min_assists"); err != nil {
		return params, err
	}
	if params.MinMinutes, err = queryIntPtr(r, "min_minutes"); err != nil {
		return params, err
	}
	if params.Page, params.PerPage, err = parsePageAndSize(r); err != nil {
		return params, err
	}
	return params, nil
}

func parseTrackedParams(r *http.Request) (statsapi.TrackedParams, error) {
	var params statsapi.TrackedParams
	var err error
	if params.TournamentID, err = queryIntPtr(r, "tournament_id"); err != nil {
		return params, err
	}
	if params.Page, params.PerPage, err = parsePageAndSize(r); err != nil {
		return params, err
	}
	return params, nil
}

func parseRawDataParams(r *http.Request) (statsapi.RawDataParams, error) {
	q := r.URL.Query()
	params := statsapi.RawDataParams{
		Search:   q.Get("search"),
		Position: q.Get("position"),
	}

	var err error
	if params.Page, err = queryIntDefault(r, "page", 1); err != nil {
		return params, err
	}
	if params.Page < 1 {
		return params, fmt.Errorf("page must be >= 1, got %d", params.Page)
	}
	if params.Limit, err = queryIntDefault(r, "limit", 50); err != nil {
		return params, err
	}
	if params.Limit < 1 || params.Limit > 1000 {
		return params, fmt.Errorf("limit must be between 1 and 1000, got %d", params.Limit)
	}
	if params.TournamentID, err = queryIntPtr(r, "tournament_id"); err != nil {
		return params, err
	}
	if params.MinGoals, err = queryIntPtr(r, "min_goals"); err != nil {
		return params, err
	}
	if params.MaxGoals, err = queryIntPtr(r, "max_goals"); err != nil {
		return params, err
	}
	if params.MinAssists, err = queryIntPtr(r, "min_assists"); err != nil {
		return params, err
	}
	if params.MaxAssists, err = queryIntPtr(r, "max_assists"); err != nil {
		return params, err
	}
	return params, nil
}

func parseTopParams(r *http.Request) (statsapi.TopParams, error) {
	params := statsapi.TopParams{Period: r.URL.Query().Get("period")}
	switch params.Period {
	case "":
		params.Period = statsapi.PeriodAllTime
	case statsapi.PeriodAllTime, statsapi.PeriodLastRound:
	default:
		return params, fmt.Errorf("period must be %s or %s, got %q", statsapi.PeriodAllTime, statsapi.PeriodLastRound, params.Period)
	}

	var err error
	if params.Limit, err = queryIntDefault(r, "limit", 10); err != nil {
		return params, err
	}
	if params.Limit < 1 || params.Limit > 50 {
		return params, fmt.Errorf("limit must be between 1 and 50, got %d", params.Limit)
	}
	if params.TournamentID, err = queryIntPtr(r, "tournament_id"); err != nil {
		return params, err
	}
	return params, nil
}
