package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

type stubServer struct {
	data *dataset
}

func (s *stubServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsapi.HealthStatus{Status: "ok", Timestamp: wireNow()})
}

func (s *stubServer) listPlayers(w http.ResponseWriter, r *http.Request) {
	params, err := listParamsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.data.list(params))
}

func listParamsFromQuery(q url.Values) (statsapi.PlayerListParams, error) {
	params := statsapi.PlayerListParams{
		TeamName:       q.Get("team_name"),
		Position:       q.Get("position"),
		TrackingStatus: statsapi.TrackingStatus(q.Get("tracking_status")),
		SearchQuery:    q.Get("search_query"),
		SortField:      q.Get("sort_field"),
		SortOrder:      q.Get("sort_order"),
	}
	var err error
	if params.TournamentID, err = queryIntPtr(q, "tournament_id"); err != nil {
		return params, err
	}
	if params.MinGoals, err = queryIntPtr(q, "min_goals"); err != nil {
		return params, err
	}
	if params.MinAssists, err = queryIntPtr(q, "min_assists"); err != nil {
		return params, err
	}
	if params.MinMinutes, err = queryIntPtr(q, "min_minutes"); err != nil {
		return params, err
	}
	if params.Page, err = queryInt(q, "page"); err != nil {
		return params, err
	}
	if params.PerPage, err = queryInt(q, "per_page"); err != nil {
		return params, err
	}
	return params, nil
}

func (s *stubServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")
	player, ok := s.data.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "player_not_found", fmt.Sprintf("no player with id %s", id))
		return
	}
	writeJSON(w, http.StatusOK, statsapi.PlayerDetail{Success: true, Data: player})
}

func (s *stubServer) searchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if utf8.RuneCountInString(query) < 2 {
		writeError(w, http.StatusBadRequest, "query_too_short", "query must be at least 2 characters")
		return
	}
	params := statsapi.SearchParams{Query: query}
	var err error
	if params.TournamentID, err = queryIntPtr(q, "tournament_id"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.Limit, err = queryInt(q, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.data.search(params))
}

func (s *stubServer) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")
	var body struct {
		TrackingStatus statsapi.TrackingStatus `json:"tracking_status"`
		Notes          string                  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if !body.TrackingStatus.Known() {
		writeError(w, http.StatusBadRequest, "unknown_status", fmt.Sprintf("unknown tracking status %q", body.TrackingStatus))
		return
	}
	change, ok := s.data.updateStatus(id, body.TrackingStatus, body.Notes)
	if !ok {
		writeError(w, http.StatusNotFound, "player_not_found", fmt.Sprintf("no player with id %s", id))
		return
	}
	log.Info("Updated player status", "player_id", id, "from", change.PreviousStatus, "to", change.NewStatus)
	writeJSON(w, http.StatusOK, change)
}

func (s *stubServer) trackedPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var params statsapi.TrackedParams
	var err error
	if params.TournamentID, err = queryIntPtr(q, "tournament_id"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.Page, err = queryInt(q, "page"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.PerPage, err = queryInt(q, "per_page"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.data.tracked(params))
}

func (s *stubServer) rawData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := statsapi.RawDataParams{
		Search:   q.Get("search"),
		Position: q.Get("position"),
	}
	var err error
	if params.Page, err = queryInt(q, "page"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.Limit, err = queryInt(q, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.TournamentID, err = queryIntPtr(q, "tournament_id"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.MinGoals, err = queryIntPtr(q, "min_goals"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.MaxGoals, err = queryIntPtr(q, "max_goals"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.MinAssists, err = queryIntPtr(q, "min_assists"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.MaxAssists, err = queryIntPtr(q, "max_assists"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.data.rawData(params))
}

func (s *stubServer) listTournaments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsapi.TournamentList{Success: true, Data: s.data.listTournaments()})
}

func (s *stubServer) tournamentStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "tournament id must be an integer")
		return
	}
	stats, ok := s.data.stats(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tournament_not_found", fmt.Sprintf("no tournament with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *stubServer) topPerformers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period != "" && period != statsapi.PeriodAllTime && period != statsapi.PeriodLastRound {
		writeError(w, http.StatusBadRequest, "unknown_period", "period must be all_time or last_round")
		return
	}
	params := statsapi.TopParams{Period: period}
	var err error
	if params.Limit, err = queryInt(q, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if params.TournamentID, err = queryIntPtr(q, "tournament_id"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.data.top(params))
}

func (s *stubServer) uploadFile(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "tournament id must be an integer")
		return
	}
	start := time.Now()
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart", err.Error())
		return
	}
	kind := statsapi.SliceKind(strings.ToUpper(r.FormValue("kind")))
	if !kind.Known() {
		writeError(w, http.StatusBadRequest, "unknown_kind", "kind must be TOTAL or PER90")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", "multipart field file is required")
		return
	}
	file.Close()

	report, ok := s.data.upload(tournamentID, header.Filename, header.Size)
	if !ok {
		writeError(w, http.StatusNotFound, "tournament_not_found", fmt.Sprintf("no tournament with id %d", tournamentID))
		return
	}
	report.DurationSeconds = time.Since(start).Seconds()
	log.Info("Accepted upload",
		"tournament_id", tournamentID,
		"kind", kind,
		"season", r.FormValue("season"),
		"round", r.FormValue("round"),
		"file", header.Filename,
		"bytes", header.Size)
	writeJSON(w, http.StatusOK, report)
}

func (s *stubServer) clearPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "tournament id must be an integer")
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm_required", "pass confirm=true to remove a tournament's players")
		return
	}
	report, ok := s.data.clear(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tournament_not_found", fmt.Sprintf("no tournament with id %d", id))
		return
	}
	log.Warn("Cleared tournament players", "tournament_id", id, "removed", report.PlayersRemoved)
	writeJSON(w, http.StatusOK, report)
}

func queryInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func queryIntPtr(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError answers with the backend's error envelope so the gateway's
// client decodes stub failures exactly like real ones.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &statsapi.APIError{
		Success:    false,
		Code:       code,
		Message:    message,
		StatusCode: status,
	})
}
