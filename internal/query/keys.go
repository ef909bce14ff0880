package query

import (
	"net/url"
	"strconv"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// Cache namespaces. Invalidation targets these, so every read path and the
// mutations that touch it must agree on them.
const (
	NSPlayers     = "players"
	NSPlayer      = "player"
	NSTracked     = "tracked"
	NSSearch      = "search"
	NSTournaments = "tournaments"
	NSStats       = "stats"
	NSTop         = "top"
	NSRaw         = "raw"
)

// Default freshness windows. Tournaments move rarely in-page but gate the
// whole board, so they get the shortest window; aggregates can sit longer.
const (
	TTLTournaments = 30 * time.Second
	TTLPlayers     = 2 * time.Minute
	TTLPlayer      = 2 * time.Minute
	TTLTracked     = time.Minute
	TTLSearch      = time.Minute
	TTLStats       = 5 * time.Minute
	TTLTop         = 5 * time.Minute
	TTLRaw         = 2 * time.Minute
)

func defaultTTLs() map[string]time.Duration {
	return map[string]time.Duration{
		NSPlayers:     TTLPlayers,
		NSPlayer:      TTLPlayer,
		NSTracked:     TTLTracked,
		NSSearch:      TTLSearch,
		NSTournaments: TTLTournaments,
		NSStats:       TTLStats,
		NSTop:         TTLTop,
		NSRaw:         TTLRaw,
	}
}

// PlayersKey identifies one page of the filtered player list.
func PlayersKey(params statsapi.PlayerListParams) Key {
	return NewKey(NSPlayers, params.Values())
}

// PlayerKey identifies a single player detail.
func PlayerKey(playerID string) Key {
	return NewKey(NSPlayer, url.Values{"id": []string{playerID}})
}

// TrackedKey identifies one page of the tracked-player list.
func TrackedKey(params statsapi.TrackedParams) Key {
	return NewKey(NSTracked, params.Values())
}

// SearchKey identifies one committed search.
func SearchKey(params statsapi.SearchParams) Key {
	return NewKey(NSSearch, params.Values())
}

// TournamentsKey identifies the tournament list.
func TournamentsKey() Key {
	return NewKey(NSTournaments, nil)
}

// StatsKey identifies one tournament's aggregate stats.
func StatsKey(tournamentID int) Key {
	return NewKey(NSStats, url.Values{"id": []string{strconv.Itoa(tournamentID)}})
}

// TopKey identifies one top-performers ranking.
func TopKey(params statsapi.TopParams) Key {
	return NewKey(NSTop, params.Values())
}

// RawKey identifies one page of the raw statistics table.
func RawKey(params statsapi.RawDataParams) Key {
	return NewKey(NSRaw, params.Values())
}
