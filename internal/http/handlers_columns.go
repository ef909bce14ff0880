package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
)

func (s *Server) GetColumnsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("owner")
		if owner == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "owner query parameter is required")
			return
		}

		cols, err := s.Prefs.Columns(owner)
		if err != nil {
			log.Error("Failed to load column preferences", "owner", owner, "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not load column preferences.")
			return
		}
		respondColumns(w, owner, cols)
	}
}

func (s *Server) SaveColumnsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Owner   string   `json:"owner"`
			Visible []string `json:"visible"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}
		if body.Owner == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "owner is required")
			return
		}

		set, err := prefs.NewColumnSet(body.Visible...)
		if err != nil {
			if errors.Is(err, prefs.ErrUnknownColumn) {
				respondErrorDetails(w, http.StatusBadRequest, "unknown_column", err.Error(),
					map[string]any{"catalog": prefs.Columns()})
				return
			}
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		if err := s.Prefs.SaveColumns(body.Owner, set); err != nil {
			log.Error("Failed to save column preferences", "owner", body.Owner, "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not save column preferences.")
			return
		}
		respondColumns(w, body.Owner, set)
	}
}

// ColumnsPresetHandler applies one of the named selections on top of the
// owner's saved columns and persists the result.
func (s *Server) ColumnsPresetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Owner  string `json:"owner"`
			Preset string `json:"preset"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
			return
		}
		if body.Owner == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "owner is required")
			return
		}

		saved, err := s.Prefs.Columns(body.Owner)
		if err != nil {
			log.Error("Failed to load column preferences", "owner", body.Owner, "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not load column preferences.")
			return
		}

		draft := prefs.NewDraft(saved)
		switch body.Preset {
		case "all":
			draft.SelectAll()
		case "minimum":
			draft.SelectMinimum()
		case "defaults":
			draft.ResetToDefaults()
		default:
			respondErrorDetails(w, http.StatusBadRequest, "unknown_preset",
				"preset must be one of all, minimum, defaults",
				map[string]any{"presets": []string{"all", "minimum", "defaults"}})
			return
		}

		set := draft.Apply()
		if err := s.Prefs.SaveColumns(body.Owner, set); err != nil {
			log.Error("Failed to save column preferences", "owner", body.Owner, "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not save column preferences.")
			return
		}
		log.Info("Applied column preset", "owner", body.Owner, "preset", body.Preset)
		respondColumns(w, body.Owner, set)
	}
}

func respondColumns(w http.ResponseWriter, owner string, set prefs.ColumnSet) {
	respondJSON(w, http.StatusOK, columnsResponse{
		Success: true,
		Owner:   owner,
		Visible: set.Visible(),
		All:     prefs.Columns(),
		Minimum: prefs.MinimumColumns().Visible(),
	})
}
