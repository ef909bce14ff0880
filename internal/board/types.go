package board

import (
	"errors"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

var (
	// ErrUnknownSortField is returned when a sort field is not sortable.
	ErrUnknownSortField = errors.New("unknown sort field")
	// ErrBadPage is returned for page numbers below 1.
	ErrBadPage = errors.New("page must be at least 1")
)

// List defaults and bounds.
const (
	DefaultSortField  = "player_name"
	DefaultPerPage    = 50
	MaxPerPage        = 500
	DefaultSearchMax  = 20
	MinSearchQueryLen = 2
)

var sortFields = []string{
	"player_name",
	"team_name",
	"position",
	"goals",
	"assists",
	"shots",
	"passes_total",
	"minutes_played",
	"created_at",
}

// SortFields lists the sortable columns.
func SortFields() []string {
	out := make([]string, len(sortFields))
	copy(out, sortFields)
	return out
}

// KnownSortField reports whether the field is sortable.
func KnownSortField(field string) bool {
	for _, f := range sortFields {
		if f == field {
			return true
		}
	}
	return false
}

// Filters narrow the player list.
type Filters struct {
	Search         string                  `json:"search"`
	Position       string                  `json:"position"`
	Team           string                  `json:"team"`
	TournamentID   *int                    `json:"tournament_id"`
	TrackingStatus statsapi.TrackingStatus `json:"tracking_status"`
	MinMinutes     *int                    `json:"min_minutes"`
	MinGoals       *int                    `json:"min_goals"`
	MinAssists     *int                    `json:"min_assists"`
}

// Equal compares filters by value, following the int pointers.
func (f Filters) Equal(other Filters) bool {
	return f.Search == other.Search &&
		f.Position == other.Position &&
		f.Team == other.Team &&
		f.TrackingStatus == other.TrackingStatus &&
		intPtrEqual(f.TournamentID, other.TournamentID) &&
		intPtrEqual(f.MinMinutes, other.MinMinutes) &&
		intPtrEqual(f.MinGoals, other.MinGoals) &&
		intPtrEqual(f.MinAssists, other.MinAssists)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Sort orders the player list.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Order is the wire form of the direction.
func (s Sort) Order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// State is a snapshot of one owner's list controls.
type State struct {
	Filters Filters `json:"filters"`
	Sort    Sort    `json:"sort"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}

func defaultState() State {
	return State{
		Sort:    Sort{Field: DefaultSortField},
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// params maps the state onto the backend list query.
func (s State) params() statsapi.PlayerListParams {
	return statsapi.PlayerListParams{
		TournamentID:   s.Filters.TournamentID,
		TeamName:       s.Filters.Team,
		Position:       s.Filters.Position,
		TrackingStatus: s.Filters.TrackingStatus,
		MinGoals:       s.Filters.MinGoals,
		MinAssists:     s.Filters.MinAssists,
		MinMinutes:     s.Filters.MinMinutes,
		SearchQuery:    s.Filters.Search,
		SortField:      s.Sort.Field,
		SortOrder:      s.Sort.Order(),
		Page:           s.Page,
		PerPage:        s.PerPage,
	}
}
