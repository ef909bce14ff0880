package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
)

// InvalidateCacheHandler drops cached entries. An empty namespace list
// flushes everything.
func (s *Server) InvalidateCacheHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Namespaces []string `json:"namespaces"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}

		var dropped int
		if len(body.Namespaces) == 0 {
			dropped = s.Cache.Len()
			s.Cache.Flush()
		} else {
			dropped = s.Cache.Invalidate(body.Namespaces...)
		}
		s.Usage.Increment(metrics.UsageInvalidations)

		log.Info("Cache invalidated by admin", "namespaces", body.Namespaces, "dropped", dropped)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"namespaces": body.Namespaces,
			"dropped":    dropped,
		})
	}
}

// ClearTournamentHandler proxies the destructive wipe. It refuses to run
// without an explicit confirm flag.
func (s *Server) ClearTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "tournament id must be an integer")
			return
		}
		if r.URL.Query().Get("confirm") != "true" {
			respondError(w, http.StatusBadRequest, "confirm_required", "Pass confirm=true to wipe a tournament's players.")
			return
		}

		report, err := s.Client.ClearTournamentPlayers(r.Context(), tournamentID, true)
		if err != nil {
			log.Error("Failed to clear tournament players", "tournamentID", tournamentID, "error", err)
			respondUpstreamError(w, err)
			return
		}

		// Everything cached derives from player data, so drop it all.
		s.Cache.Flush()
		s.Usage.Increment(metrics.UsageTournamentWipe)
		log.Info("Cleared tournament players", "tournamentID", tournamentID, "removed", report.PlayersRemoved)
		respondData(w, report)
	}
}

func (s *Server) UsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Usage.GetAll()
		if err != nil {
			log.Error("Failed to read usage counters", "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not read usage counters.")
			return
		}
		respondData(w, counters)
	}
}
