package statsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Client is the typed HTTP client for the football statistics backend.
type Client struct {
	httpClient *http.Client
	BaseURL    string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests point it at an
// httptest server).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the default 10 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure Client implements the StatsClient interface.
var _ StatsClient = (*Client)(nil)

// ListPlayers fetches one page of the filtered, sorted player list.
func (c *Client) ListPlayers(ctx context.Context, params PlayerListParams) (PlayerList, error) {
	var list PlayerList
	if err := c.get(ctx, "/players", params.Values(), &list); err != nil {
		return PlayerList{}, err
	}
	log.Debug("Fetched players", "count", len(list.Data), "total", list.Total, "page", list.Page)
	return list, nil
}

// GetPlayer fetches a single player by id.
func (c *Client) GetPlayer(ctx context.Context, id string) (Player, error) {
	var detail PlayerDetail
	if err := c.get(ctx, "/players/"+url.PathEscape(id), nil, &detail); err != nil {
		return Player{}, err
	}
	return detail.Data, nil
}

// SearchPlayers runs a live name search. Queries shorter than two characters
// are rejected before any request is made.
func (c *Client) SearchPlayers(ctx context.Context, params SearchParams) (SearchResponse, error) {
	if len(strings.TrimSpace(params.Query)) < 2 {
		return SearchResponse{}, ErrQueryTooShort
	}
	var resp SearchResponse
	if err := c.get(ctx, "/players/search", params.Values(), &resp); err != nil {
		return SearchResponse{}, err
	}
	log.Debug("Search completed", "query", params.Query, "found", resp.TotalFound)
	return resp, nil
}

// UpdatePlayerStatus changes a player's tracking status, optionally
// replacing the scouting notes.
func (c *Client) UpdatePlayerStatus(ctx context.Context, playerID string, status TrackingStatus, notes string) (StatusChange, error) {
	if !status.Known() {
		return StatusChange{}, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	body := struct {
		TrackingStatus TrackingStatus `json:"tracking_status"`
		Notes          string         `json:"notes,omitempty"`
	}{TrackingStatus: status, Notes: notes}

	var change StatusChange
	if err := c.send(ctx, http.MethodPut, "/players/"+url.PathEscape(playerID)+"/status", nil, body, &change); err != nil {
		return StatusChange{}, err
	}
	log.Info("Updated player status", "player_id", change.PlayerID, "from", change.PreviousStatus, "to", change.NewStatus)
	return change, nil
}

// ListTracked fetches the players whose status is anything above the default.
func (c *Client) ListTracked(ctx context.Context, params TrackedParams) (PlayerList, error) {
	var list PlayerList
	if err := c.get(ctx, "/players/tracked", params.Values(), &list); err != nil {
		return PlayerList{}, err
	}
	return list, nil
}

// RawData fetches the unfiltered database dump view.
func (c *Client) RawData(ctx context.Context, params RawDataParams) (PlayerList, error) {
	var list PlayerList
	if err := c.get(ctx, "/players/raw-data", params.Values(), &list); err != nil {
		return PlayerList{}, err
	}
	return list, nil
}

// ListTournaments fetches the full tournament reference set.
func (c *Client) ListTournaments(ctx context.Context) ([]Tournament, error) {
	var list TournamentList
	if err := c.get(ctx, "/tournaments", nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// TournamentStats fetches the aggregate view for one tournament.
func (c *Client) TournamentStats(ctx context.Context, tournamentID int) (TournamentStats, error) {
	var stats TournamentStats
	if err := c.get(ctx, "/tournaments/"+strconv.Itoa(tournamentID)+"/stats", nil, &stats); err != nil {
		return TournamentStats{}, err
	}
	return stats, nil
}

// TopPerformers fetches the per-metric leaderboards for a period.
func (c *Client) TopPerformers(ctx context.Context, params TopParams) (TopPerformers, error) {
	if params.Period == "" {
		params.Period = PeriodAllTime
	}
	if params.Period != PeriodAllTime && params.Period != PeriodLastRound {
		return TopPerformers{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, params.Period)
	}
	var top TopPerformers
	if err := c.get(ctx, "/top-performers", params.Values(), &top); err != nil {
		return TopPerformers{}, err
	}
	return top, nil
}

// UploadFile posts one tournament statistics file as multipart/form-data.
// The file is buffered in memory; callers enforce the size cap beforehand.
func (c *Client) UploadFile(ctx context.Context, params UploadParams, file io.Reader) (UploadReport, error) {
	if !params.Kind.Known() {
		return UploadReport{}, fmt.Errorf("%w: %q", ErrUnknownKind, params.Kind)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", params.FileName)
	if err != nil {
		return UploadReport{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadReport{}, fmt.Errorf("failed to buffer upload: %w", err)
	}
	fields := map[string]string{
		"kind":   string(params.Kind),
		"season": params.Season,
		"round":  strconv.Itoa(params.Round),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return UploadReport{}, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return UploadReport{}, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/tournaments/%d/upload", c.BaseURL, params.TournamentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return UploadReport{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	log.Info("Uploading tournament file", "tournament_id", params.TournamentID, "kind", params.Kind, "file", params.FileName)
	var report UploadReport
	if err := c.do(req, &report); err != nil {
		return UploadReport{}, err
	}
	return report, nil
}

// ClearTournamentPlayers wipes every player of one tournament. The confirm
// flag is required; there is no undo on the backend.
func (c *Client) ClearTournamentPlayers(ctx context.Context, tournamentID int, confirm bool) (ClearReport, error) {
	if !confirm {
		return ClearReport{}, ErrConfirmRequired
	}
	v := url.Values{}
	v.Set("confirm", "true")
	var report ClearReport
	if err := c.send(ctx, http.MethodDelete, "/tournaments/"+strconv.Itoa(tournamentID)+"/players", v, nil, &report); err != nil {
		return ClearReport{}, err
	}
	log.Warn("Cleared tournament players", "tournament_id", tournamentID, "removed", report.PlayersRemoved)
	return report, nil
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/health", nil, &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.send(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	endpoint := c.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	log.Debug("Requesting stats API", "method", req.Method, "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Stats API request failed before a response arrived", "method", req.Method, "url", req.URL.String(), "error", err)
		return networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an APIError, preferring the
// backend's own error envelope when the body parses as one.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Code != "" || apiErr.Message != "") {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode
		}
		apiErr.Success = false
		log.Error("Stats API returned an error", "status", apiErr.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
		return &apiErr
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	log.Error("Stats API returned a non-OK status", "status", resp.StatusCode, "body", snippet)
	return &APIError{
		Success:    false,
		Code:       "http_error",
		Message:    snippet,
		StatusCode: resp.StatusCode,
	}
}
