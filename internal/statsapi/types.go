package statsapi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// TrackingStatus classifies a player's scouting interest level.
type TrackingStatus string

const (
	// StatusNonInteresting is the default status every player starts with.
	StatusNonInteresting TrackingStatus = "non interesting"
	// StatusInteresting marks a player worth a second look.
	StatusInteresting TrackingStatus = "interesting"
	// StatusToWatch marks a player under active observation.
	StatusToWatch TrackingStatus = "to watch"
	// StatusMyPlayer marks a player claimed by the scout.
	StatusMyPlayer TrackingStatus = "my player"
)

// DefaultTrackingStatus is the fallback for values we do not recognise.
const DefaultTrackingStatus = StatusNonInteresting

// TrackingStatuses returns all known statuses in escalation order.
func TrackingStatuses() []TrackingStatus {
	return []TrackingStatus{StatusNonInteresting, StatusInteresting, StatusToWatch, StatusMyPlayer}
}

// Known reports whether the status is one of the four enumerated values.
func (s TrackingStatus) Known() bool {
	switch s {
	case StatusNonInteresting, StatusInteresting, StatusToWatch, StatusMyPlayer:
		return true
	}
	return false
}

// ParseTrackingStatus maps a raw backend value onto the enum, degrading to
// the default status rather than failing on values we have never seen.
func ParseTrackingStatus(raw string) TrackingStatus {
	s := TrackingStatus(raw)
	if s.Known() {
		return s
	}
	log.Warn("Unknown tracking status received from stats API", "status", raw)
	return DefaultTrackingStatus
}

// Player is a single player row as the backend serves it. Timestamps stay
// in their wire form (naive ISO strings); use ParseTime to interpret them.
type Player struct {
	ID             string         `json:"id"`
	PlayerName     string         `json:"player_name"`
	TeamName       string         `json:"team_name"`
	Position       string         `json:"position"`
	Age            int            `json:"age"`
	PlayerNumber   int            `json:"player_number"`
	Height         int            `json:"height"`
	Weight         int            `json:"weight"`
	Citizenship    string         `json:"citizenship"`
	MinutesPlayed  int            `json:"minutes_played"`
	Goals          int            `json:"goals"`
	Assists        int            `json:"assists"`
	Shots          int            `json:"shots"`
	ShotsOnTarget  int            `json:"shots_on_target"`
	PassesTotal    int            `json:"passes_total"`
	PassesAccuracy float64        `json:"passes_accuracy"`
	Tackles        int            `json:"tackles"`
	Interceptions  int            `json:"interceptions"`
	YellowCards    int            `json:"yellow_cards"`
	RedCards       int            `json:"red_cards"`
	XG             float64        `json:"xg"`
	PlayerIndex    float64        `json:"player_index"`
	Notes          string         `json:"notes"`
	TournamentID   int            `json:"tournament_id"`
	TrackingStatus TrackingStatus `json:"tracking_status"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

// PlayerList is the envelope every player list endpoint returns.
type PlayerList struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Data       []Player `json:"data"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
}

// PlayerDetail wraps a single player fetched by id.
type PlayerDetail struct {
	Success bool   `json:"success"`
	Data    Player `json:"data"`
}

// SearchResult is the trimmed-down player shape returned by live search.
type SearchResult struct {
	ID            string         `json:"id"`
	PlayerName    string         `json:"player_name"`
	TeamName      string         `json:"team_name"`
	Position      string         `json:"position"`
	TournamentID  int            `json:"tournament_id"`
	CurrentStatus TrackingStatus `json:"current_status"`
	BasicStats    map[string]any `json:"basic_stats,omitempty"`
}

// SearchResponse carries search results along with the query that produced them.
type SearchResponse struct {
	Query      string         `json:"query"`
	Results    []SearchResult `json:"results"`
	TotalFound int            `json:"total_found"`
}

// Tournament is a reference-set row; the whole set is a handful of rows.
type Tournament struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Code         string `json:"code"`
	PlayersCount int    `json:"players_count"`
	LastUpdate   string `json:"last_update,omitempty"`
}

// TournamentList is the envelope for GET /tournaments.
type TournamentList struct {
	Success bool         `json:"success"`
	Data    []Tournament `json:"data"`
}

// TournamentStats aggregates a single tournament.
type TournamentStats struct {
	TournamentID   int                `json:"tournament_id"`
	TotalPlayers   int                `json:"total_players"`
	TeamsCount     int                `json:"teams_count"`
	PositionsCount int                `json:"positions_count"`
	TrackedPlayers int                `json:"tracked_players"`
	Averages       map[string]float64 `json:"averages"`
	Totals         map[string]int     `json:"totals"`
	TopScorers     []Performance      `json:"top_scorers"`
	TopAssisters   []Performance      `json:"top_assisters"`
}

// Performance is the leaderboard projection of a player: one metric plus
// its per-90-minutes normalization.
type Performance struct {
	ID            string  `json:"id"`
	PlayerName    string  `json:"player_name"`
	TeamName      string  `json:"team_name"`
	Position      string  `json:"position"`
	TournamentID  int     `json:"tournament_id"`
	MetricValue   float64 `json:"metric_value"`
	MinutesPlayed int     `json:"minutes_played"`
	Per90Value    float64 `json:"per_90_value"`
}

// TopPerformers groups leaderboards per metric for one period.
type TopPerformers struct {
	Goals   []Performance `json:"goals"`
	Assists []Performance `json:"assists"`
	Shots   []Performance `json:"shots"`
	Passes  []Performance `json:"passes"`
	Period  string        `json:"period"`
}

// Period values accepted by the top-performers endpoint.
const (
	PeriodAllTime   = "all_time"
	PeriodLastRound = "last_round"
)

// StatusChange is the confirmed result of a tracking-status mutation.
type StatusChange struct {
	PlayerID       string         `json:"player_id"`
	NewStatus      TrackingStatus `json:"new_status"`
	PreviousStatus TrackingStatus `json:"previous_status"`
}

// SliceKind selects which normalization of season statistics a file carries.
type SliceKind string

const (
	// SliceTotal holds raw season totals.
	SliceTotal SliceKind = "TOTAL"
	// SlicePer90 holds per-90-minutes rates.
	SlicePer90 SliceKind = "PER90"
)

// Known reports whether the kind is one of the two supported slices.
func (k SliceKind) Known() bool {
	return k == SliceTotal || k == SlicePer90
}

// TableDelta counts rows touched in one backend table during an upload.
type TableDelta struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// UploadReport is the backend's summary of one processed tournament file.
type UploadReport struct {
	FileName        string     `json:"file_name"`
	TournamentID    int        `json:"tournament_id"`
	TotalRows       int        `json:"total_rows"`
	MainTable       TableDelta `json:"main_table"`
	LastRoundTable  TableDelta `json:"last_round_table"`
	DurationSeconds float64    `json:"duration_seconds"`
	UploadTime      string     `json:"upload_time"`
}

// ClearReport confirms an administrative wipe of a tournament's players.
type ClearReport struct {
	TournamentID   int `json:"tournament_id"`
	PlayersRemoved int `json:"players_removed"`
}

// HealthStatus is the backend liveness response.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PlayerListParams narrows GET /players. Nil and empty fields are omitted
// from the query string so absent filters never constrain the server query.
type PlayerListParams struct {
	TournamentID   *int
	TeamName       string
	Position       string
	TrackingStatus TrackingStatus
	MinGoals       *int
	MinAssists     *int
	MinMinutes     *int
	SearchQuery    string
	SortField      string
	SortOrder      string
	Page           int
	PerPage        int
}

// Values serializes the params for the wire. Encoding sorts keys, so equal
// params always produce the same string.
func (p PlayerListParams) Values() url.Values {
	v := url.Values{}
	setIntPtr(v, "tournament_id", p.TournamentID)
	setString(v, "team_name", p.TeamName)
	setString(v, "position", p.Position)
	setString(v, "tracking_status", string(p.TrackingStatus))
	setIntPtr(v, "min_goals", p.MinGoals)
	setIntPtr(v, "min_assists", p.MinAssists)
	setIntPtr(v, "min_minutes", p.MinMinutes)
	setString(v, "search_query", p.SearchQuery)
	setString(v, "sort_field", p.SortField)
	setString(v, "sort_order", p.SortOrder)
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	return v
}

// TrackedParams narrows GET /players/tracked.
type TrackedParams struct {
	TournamentID *int
	Page         int
	PerPage      int
}

func (p TrackedParams) Values() url.Values {
	v := url.Values{}
	setIntPtr(v, "tournament_id", p.TournamentID)
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	return v
}

// RawDataParams narrows GET /players/raw-data.
type RawDataParams struct {
	Page         int
	Limit        int
	Search       string
	TournamentID *int
	Position     string
	MinGoals     *int
	MaxGoals     *int
	MinAssists   *int
	MaxAssists   *int
}

func (p RawDataParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "search", p.Search)
	setIntPtr(v, "tournament_id", p.TournamentID)
	setString(v, "position", p.Position)
	setIntPtr(v, "min_goals", p.MinGoals)
	setIntPtr(v, "max_goals", p.MaxGoals)
	setIntPtr(v, "min_assists", p.MinAssists)
	setIntPtr(v, "max_assists", p.MaxAssists)
	return v
}

// SearchParams narrows GET /players/search.
type SearchParams struct {
	Query        string
	TournamentID *int
	Limit        int
}

func (p SearchParams) Values() url.Values {
	v := url.Values{}
	setString(v, "query", p.Query)
	setIntPtr(v, "tournament_id", p.TournamentID)
	setInt(v, "limit", p.Limit)
	return v
}

// TopParams narrows GET /top-performers.
type TopParams struct {
	Period       string
	Limit        int
	TournamentID *int
}

func (p TopParams) Values() url.Values {
	v := url.Values{}
	setString(v, "period", p.Period)
	setInt(v, "limit", p.Limit)
	setIntPtr(v, "tournament_id", p.TournamentID)
	return v
}

// UploadParams describe one tournament file submission.
type UploadParams struct {
	TournamentID int
	Kind         SliceKind
	Season       string
	Round        int
	FileName     string
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

func setIntPtr(v url.Values, key string, value *int) {
	if value != nil {
		v.Set(key, strconv.Itoa(*value))
	}
}

// timeLayouts covers the backend's naive ISO timestamps, with and without
// fractional seconds, plus RFC3339 in case the backend ever grows a zone.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseTime interprets a wire timestamp. The zero time and an error come
// back for anything unparseable.
func ParseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
