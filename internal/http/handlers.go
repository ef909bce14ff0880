package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/format"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// BackendHealthHandler reports the upstream's own health, never a cached copy.
func (s *Server) BackendHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health, err := s.Client.Health(r.Context())
		if err != nil {
			log.Error("Backend health check failed", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, health)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePlayerListParams(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.PlayersKey(params), opts, func(ctx context.Context) (statsapi.PlayerList, error) {
			return s.Client.ListPlayers(ctx, params)
		})
		if err != nil {
			log.Error("Failed to list players", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res.Value)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.PlayerKey(playerID), opts, func(ctx context.Context) (statsapi.Player, error) {
			return s.Client.GetPlayer(ctx, playerID)
		})
		if err != nil {
			log.Error("Failed to get player", "playerID", playerID, "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, playerDetailResponse{
			Success: true,
			Data:    res.Value,
			Card:    buildPlayerCard(res.Value),
		})
	}
}

// SearchPlayersHandler is the stateless search endpoint. Queries under the
// minimum length resolve locally; the rest go through the search cache.
func (s *Server) SearchPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := strings.TrimSpace(r.URL.Query().Get("query"))
		if len([]rune(text)) < board.MinSearchQueryLen {
			state := board.SearchIdle
			if text != "" {
				state = board.SearchPrompt
			}
			respondJSON(w, http.StatusOK, searchStateResponse{Success: true, State: state, Query: text})
			return
		}

		limit, err := queryIntDefault(r, "limit", board.DefaultSearchMax)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if limit < 1 || limit > 100 {
			respondError(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("limit must be between 1 and 100, got %d", limit))
			return
		}
		tournamentID, err := queryIntPtr(r, "tournament_id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		params := statsapi.SearchParams{Query: text, TournamentID: tournamentID, Limit: limit}
		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.SearchKey(params), opts, func(ctx context.Context) (statsapi.SearchResponse, error) {
			return s.Client.SearchPlayers(ctx, params)
		})
		if err != nil {
			log.Error("Search failed", "query", text, "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, searchStateResponse{
			Success: true,
			State:   board.SearchDone,
			Query:   text,
			Results: &res.Value,
			Stale:   res.Stale,
		})
	}
}

func (s *Server) UpdateStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "playerID")

		var body struct {
			TrackingStatus string `json:"tracking_status"`
			Notes          string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}
		status := statsapi.TrackingStatus(body.TrackingStatus)
		if !status.Known() {
			respondErrorDetails(w, http.StatusBadRequest, "unknown_status",
				fmt.Sprintf("tracking_status %q is not a known status", body.TrackingStatus),
				map[string]any{"valid_statuses": statsapi.TrackingStatuses()})
			return
		}

		change, err := s.Status.Update(r.Context(), playerID, status, body.Notes)
		if err != nil {
			log.Error("Status update failed", "playerID", playerID, "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondData(w, change)
	}
}

func (s *Server) TrackedPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseTrackedParams(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.TrackedKey(params), opts, func(ctx context.Context) (statsapi.PlayerList, error) {
			return s.Client.ListTracked(ctx, params)
		})
		if err != nil {
			log.Error("Failed to list tracked players", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res.Value)
	}
}

func (s *Server) RawDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseRawDataParams(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.RawKey(params), opts, func(ctx context.Context) (statsapi.PlayerList, error) {
			return s.Client.RawData(ctx, params)
		})
		if err != nil {
			log.Error("Failed to load raw data", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res.Value)
	}
}

func (s *Server) ListTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.TournamentsKey(), opts, func(ctx context.Context) ([]statsapi.Tournament, error) {
			return s.Client.ListTournaments(ctx)
		})
		if err != nil {
			log.Error("Failed to list tournaments", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, statsapi.TournamentList{Success: true, Data: res.Value})
	}
}

func (s *Server) TournamentStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "tournament id must be an integer")
			return
		}

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.StatsKey(tournamentID), opts, func(ctx context.Context) (statsapi.TournamentStats, error) {
			return s.Client.TournamentStats(ctx, tournamentID)
		})
		if err != nil {
			log.Error("Failed to load tournament stats", "tournamentID", tournamentID, "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondData(w, res.Value)
	}
}

func (s *Server) TopPerformersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseTopParams(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		opts := query.Options{ForceRefresh: isRefreshFromContext(r)}
		res, err := query.Lookup(r.Context(), s.Cache, query.TopKey(params), opts, func(ctx context.Context) (statsapi.TopPerformers, error) {
			return s.Client.TopPerformers(ctx, params)
		})
		if err != nil {
			log.Error("Failed to load top performers", "error", err)
			respondUpstreamError(w, err)
			return
		}
		respondData(w, res.Value)
	}
}

func buildPlayerCard(p statsapi.Player) playerCard {
	return playerCard{
		Age:            format.Age(p.Age),
		Height:         format.HeightCm(p.Height),
		Weight:         format.WeightKg(p.Weight),
		MinutesPlayed:  format.Minutes(p.MinutesPlayed),
		PassesAccuracy: format.Percent(p.PassesAccuracy),
		XG:             format.Decimal(p.XG),
		GoalsPer90:     format.Decimal(format.PerNinety(float64(p.Goals), p.MinutesPlayed)),
		StatusLabel:    format.StatusLabel(p.TrackingStatus),
	}
}
