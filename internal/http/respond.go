package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{
		Success:    false,
		Code:       code,
		Message:    message,
		StatusCode: status,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	respondJSON(w, status, errorResponse{
		Success:    false,
		Code:       code,
		Message:    message,
		StatusCode: status,
		Details:    details,
	})
}

// respondUpstreamError translates a failed backend call. APIError responses
// pass through with the backend's own status and code; anything else is a
// 502 from the gateway's point of view.
func respondUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *statsapi.APIError
	if errors.As(err, &apiErr) {
		respondJSON(w, apiErr.StatusCode, errorResponse{
			Success:    false,
			Code:       apiErr.Code,
			Message:    apiErr.Message,
			StatusCode: apiErr.StatusCode,
			Details:    apiErr.Details,
		})
		return
	}
	respondError(w, http.StatusBadGateway, "upstream_error", err.Error())
}
