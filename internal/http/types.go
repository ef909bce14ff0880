package http

import (
	"net/http"

	"github.com/scoutdeck/scoutdeck/internal/board"
	"github.com/scoutdeck/scoutdeck/internal/config"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/scoutdeck/scoutdeck/internal/upload"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	Client         statsapi.StatsClient
	Cache          *query.Cache
	Boards         *board.Registry
	Status         *board.StatusMutator
	Prefs          prefs.PrefsStore
	Uploader       upload.Uploader
	Usage          metrics.UsageStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *chi.Mux
}

// errorResponse is the envelope every failed request carries, mirroring the
// backend's own error shape so clients see one format end to end.
type errorResponse struct {
	Success    bool           `json:"success"`
	Code       string         `json:"error"`
	Message    string         `json:"message"`
	StatusCode int            `json:"status_code"`
	Details    map[string]any `json:"details,omitempty"`
}

// dataResponse wraps successful responses that have no envelope of their own.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// playerCard carries the display-ready fields of a player detail.
type playerCard struct {
	Age            string `json:"age"`
	Height         string `json:"height"`
	Weight         string `json:"weight"`
	MinutesPlayed  string `json:"minutes_played"`
	PassesAccuracy string `json:"passes_accuracy"`
	XG             string `json:"xg"`
	GoalsPer90     string `json:"goals_per_90"`
	StatusLabel    string `json:"status_label"`
}

// playerDetailResponse is the player page payload: raw fields plus the card.
type playerDetailResponse struct {
	Success bool            `json:"success"`
	Data    statsapi.Player `json:"data"`
	Card    playerCard      `json:"card"`
}

// searchStateResponse reports where a search stands; short queries resolve
// locally and Results stays nil.
type searchStateResponse struct {
	Success bool                     `json:"success"`
	State   board.SearchState        `json:"state"`
	Query   string                   `json:"query"`
	Results *statsapi.SearchResponse `json:"results,omitempty"`
	Stale   bool                     `json:"stale,omitempty"`
}

// boardRow is one table row rendered for the board's visible columns.
type boardRow struct {
	ID          string            `json:"id"`
	PlayerName  string            `json:"player_name"`
	TeamName    string            `json:"team_name"`
	Position    string            `json:"position"`
	StatusLabel string            `json:"status_label"`
	Cells       map[string]string `json:"cells"`
}

// boardViewResponse is the full state of one owner's board plus the page of
// rows currently in view.
type boardViewResponse struct {
	Success    bool        `json:"success"`
	Owner      string      `json:"owner"`
	State      board.State `json:"state"`
	Columns    []string    `json:"columns"`
	Rows       []boardRow  `json:"rows"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Stale      bool        `json:"stale"`
}

// columnsResponse reports an owner's column visibility against the catalog.
type columnsResponse struct {
	Success bool     `json:"success"`
	Owner   string   `json:"owner"`
	Visible []string `json:"visible"`
	All     []string `json:"all"`
	Minimum []string `json:"minimum"`
}

// lastUploadResponse returns the remembered upload and the round a scout
// would most likely enter next.
type lastUploadResponse struct {
	Success        bool              `json:"success"`
	Data           *prefs.LastUpload `json:"data"`
	SuggestedRound int               `json:"suggested_round"`
}

// slotView is the wire form of one upload slot; errors flatten to strings.
type slotView struct {
	Kind        statsapi.SliceKind     `json:"kind"`
	FileName    string                 `json:"file_name,omitempty"`
	Status      upload.SlotStatus      `json:"status"`
	Transitions []upload.SlotStatus    `json:"transitions"`
	Report      *statsapi.UploadReport `json:"report,omitempty"`
	Error       string                 `json:"error,omitempty"`
	DurationMS  int64                  `json:"duration_ms"`
}

// batchView is the wire form of a whole upload batch.
type batchView struct {
	Success      bool       `json:"success"`
	ID           string     `json:"id"`
	TournamentID int        `json:"tournament_id"`
	Season       string     `json:"season"`
	Round        int        `json:"round"`
	Slots        []slotView `json:"slots"`
	Succeeded    int        `json:"succeeded"`
	Failed       int        `json:"failed"`
	DurationMS   int64      `json:"duration_ms"`
}
