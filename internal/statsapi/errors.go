package statsapi

import (
	"errors"
	"fmt"
)

// Validation failures raised before any request leaves the process.
var (
	ErrQueryTooShort   = errors.New("search query must be at least 2 characters")
	ErrUnknownStatus   = errors.New("unknown tracking status")
	ErrUnknownPeriod   = errors.New("period must be all_time or last_round")
	ErrUnknownKind     = errors.New("file kind must be TOTAL or PER90")
	ErrConfirmRequired = errors.New("confirm must be set to clear tournament players")
)

// APIError is the one shape every backend failure is normalized to.
// Transport-level failures (connection refused, timeout) carry status code 0.
type APIError struct {
	Success    bool           `json:"success"`
	Code       string         `json:"error"`
	Message    string         `json:"message"`
	StatusCode int            `json:"status_code"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stats api: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// Temporary reports whether a retry could plausibly succeed. Transport
// failures and 5xx responses qualify; everything else is the caller's fault.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func networkError(err error) *APIError {
	return &APIError{
		Success:    false,
		Code:       "network_error",
		Message:    err.Error(),
		StatusCode: 0,
	}
}

// IsTemporary reports whether err is an APIError worth retrying.
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}
