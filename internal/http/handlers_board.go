package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/format"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// boardSession resolves the owner's session from the route. An empty owner
// never gets here; chi treats it as a different route.
func (s *Server) boardSession(r *http.Request) *board.Session {
	return s.Boards.Session(chi.URLParam(r, "owner"))
}

// BoardViewHandler loads the owner's current page through the cache and
// renders it against their visible columns.
func (s *Server) BoardViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)
		view, err := s.renderBoard(r, session)
		if err != nil {
			log.Error("Failed to load board", "owner", session.Owner, "error", err)
			respondUpstreamError(w, err)
			return
		}
		s.Usage.Increment(metrics.UsagePlayersViews)
		respondJSON(w, http.StatusOK, view)
	}
}

// BoardSearchHandler feeds one input event into the owner's debounced
// search. Superseded inputs come back as typing; committed ones apply the
// search filter and include quick results.
func (s *Server) BoardSearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)

		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		view, err := session.Search.Input(r.Context(), body.Query)
		if err != nil {
			log.Error("Board search failed", "owner", session.Owner, "query", view.Query, "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, searchStateResponse{
			Success: true,
			State:   view.State,
			Query:   view.Query,
			Results: view.Results,
			Stale:   view.Stale,
		})
	}
}

// BoardFiltersHandler applies a partial filter patch. Keys absent from the
// body keep their current value; explicit nulls clear.
func (s *Server) BoardFiltersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)

		var patch map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		next, err := applyFilterPatch(session.Controller.State().Filters, patch)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		changed := session.Controller.ApplyFilters(next)
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"changed": changed,
			"state":   session.Controller.State(),
		})
	}
}

func (s *Server) BoardSortHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)

		var body struct {
			Field string `json:"field"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		sort, err := session.Controller.ToggleSort(body.Field)
		if err != nil {
			if errors.Is(err, board.ErrUnknownSortField) {
				respondErrorDetails(w, http.StatusBadRequest, "unknown_sort_field", err.Error(),
					map[string]any{"sortable_fields": board.SortFields()})
				return
			}
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"sort":    sort,
			"state":   session.Controller.State(),
		})
	}
}

func (s *Server) BoardPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)

		var body struct {
			Page int `json:"page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		if err := session.Controller.SetPage(body.Page); err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "state": session.Controller.State()})
	}
}

func (s *Server) BoardPageSizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)

		var body struct {
			PerPage int `json:"per_page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		applied := session.Controller.SetPerPage(body.PerPage)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"per_page": applied,
			"state":    session.Controller.State(),
		})
	}
}

func (s *Server) BoardResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.boardSession(r)
		session.Controller.Reset()
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "state": session.Controller.State()})
	}
}

func (s *Server) renderBoard(r *http.Request, session *board.Session) (boardViewResponse, error) {
	res, err := session.Controller.Load(r.Context(), isRefreshFromContext(r))
	if err != nil {
		return boardViewResponse{}, err
	}

	cols, err := s.Prefs.Columns(session.Owner)
	if err != nil {
		log.Warn("Falling back to default columns", "owner", session.Owner, "error", err)
		cols = prefs.DefaultColumns()
	}
	visible := cols.Visible()

	list := res.Value
	rows := make([]boardRow, 0, len(list.Data))
	for _, p := range list.Data {
		rows = append(rows, buildBoardRow(p, visible))
	}
	return boardViewResponse{
		Success:    true,
		Owner:      session.Owner,
		State:      session.Controller.State(),
		Columns:    visible,
		Rows:       rows,
		Total:      list.Total,
		TotalPages: list.TotalPages,
		Stale:      res.Stale,
	}, nil
}

func buildBoardRow(p statsapi.Player, visible []string) boardRow {
	cells := make(map[string]string, len(visible))
	for _, col := range visible {
		cells[col] = formatCell(p, col)
	}
	return boardRow{
		ID:          p.ID,
		PlayerName:  p.PlayerName,
		TeamName:    p.TeamName,
		Position:    p.Position,
		StatusLabel: format.StatusLabel(p.TrackingStatus),
		Cells:       cells,
	}
}

func formatCell(p statsapi.Player, col string) string {
	switch col {
	case prefs.ColMinutesPlayed:
		return format.Minutes(p.MinutesPlayed)
	case prefs.ColGoals:
		return strconv.Itoa(p.Goals)
	case prefs.ColAssists:
		return strconv.Itoa(p.Assists)
	case prefs.ColShots:
		return strconv.Itoa(p.Shots)
	case prefs.ColShotsOnTarget:
		return strconv.Itoa(p.ShotsOnTarget)
	case prefs.ColPassesTotal:
		return format.Minutes(p.PassesTotal)
	case prefs.ColPassesAccuracy:
		return format.Percent(p.PassesAccuracy)
	case prefs.ColTackles:
		return strconv.Itoa(p.Tackles)
	case prefs.ColInterceptions:
		return strconv.Itoa(p.Interceptions)
	case prefs.ColYellowCards:
		return strconv.Itoa(p.YellowCards)
	case prefs.ColRedCards:
		return strconv.Itoa(p.RedCards)
	case prefs.ColXG:
		return format.Decimal(p.XG)
	default:
		return format.Unknown
	}
}

func applyFilterPatch(current board.Filters, patch map[string]json.RawMessage) (board.Filters, error) {
	next := current
	for key, raw := range patch {
		var err error
		switch key {
		case "search":
			err = patchString(raw, &next.Search)
		case "position":
			err = patchString(raw, &next.Position)
		case "team":
			err = patchString(raw, &next.Team)
		case "tournament_id":
			next.TournamentID, err = patchIntPtr(raw)
		case "tracking_status":
			var status string
			if err = patchString(raw, &status); err == nil {
				if status != "" && !statsapi.TrackingStatus(status).Known() {
					return current, fmt.Errorf("tracking_status %q is not a known status", status)
				}
				next.TrackingStatus = statsapi.TrackingStatus(status)
			}
		case "min_minutes":
			next.MinMinutes, err = patchIntPtr(raw)
		case "min_goals":
			next.MinGoals, err = patchIntPtr(raw)
		case "min_assists":
			next.MinAssists, err = patchIntPtr(raw)
		default:
			return current, fmt.Errorf("unknown filter %q", key)
		}
		if err != nil {
			return current, fmt.Errorf("filter %s: %w", key, err)
		}
	}
	return next, nil
}

// patchString writes the patched value into dst; an explicit null clears it.
func patchString(raw json.RawMessage, dst *string) error {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		*dst = ""
		return nil
	}
	*dst = *v
	return nil
}

// patchIntPtr returns the patched pointer; an explicit null clears to nil.
func patchIntPtr(raw json.RawMessage) (*int, error) {
	var v *int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
