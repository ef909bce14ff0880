package main

import (
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// wireTime is the naive ISO layout the real backend uses for timestamps.
const wireTime = "2006-01-02T15:04:05.999999"

const (
	defaultPerPage     = 50
	maxPerPage         = 500
	defaultRawLimit    = 50
	maxRawLimit        = 1000
	defaultSearchLimit = 10
	maxSearchLimit     = 100
	defaultTopLimit    = 10
	maxTopLimit        = 100
	statsBoardSize     = 5
)

// dataset is the in-memory stand-in for the backend database. Reads take
// the read lock; status updates, uploads and clears mutate under the
// write lock. Handlers only ever see copies of the stored rows.
type dataset struct {
	mu          sync.RWMutex
	players     []statsapi.Player
	tournaments []statsapi.Tournament
}

var tournamentSeed = []statsapi.Tournament{
	{ID: 1, Name: "MFL", FullName: "Moscow Football League", Code: "mfl"},
	{ID: 2, Name: "YFL-1", FullName: "Youth Football League 1", Code: "yfl1"},
	{ID: 3, Name: "YFL-2", FullName: "Youth Football League 2", Code: "yfl2"},
	{ID: 4, Name: "YFL-3", FullName: "Youth Football League 3", Code: "yfl3"},
}

// defaultSpread is the per-league player count when STUB_PLAYERS is unset.
var defaultSpread = []int{120, 80, 95, 60}

var (
	firstNames = []string{
		"Ivan", "Marco", "Luka", "Pavel", "Jonas", "Timo", "Andrei", "Viktor", "Stefan", "Milan",
		"Dario", "Nikola", "Emil", "Oskar", "Mateo", "Leon", "Petr", "Artem", "Denis", "Karlo",
	}
	lastNames = []string{
		"Petrov", "Kovac", "Novak", "Horvat", "Jensen", "Weber", "Marin", "Sokolov", "Babic", "Vidal",
		"Moreau", "Lang", "Fischer", "Kral", "Dvorak", "Bondar", "Melnik", "Juric", "Simic", "Volkov",
	}
	teamNames = []string{
		"Dynamo", "Lokomotiv", "Torpedo", "Spartak Youth", "Zenit Academy",
		"CSKA Reserves", "Rodina", "Strogino", "Chertanovo", "Master-Saturn",
	}
	positionPool    = []string{"GK", "DF", "DF", "DF", "MF", "MF", "MF", "FW", "FW"}
	citizenshipPool = []string{"Russia", "Serbia", "Belarus", "Kazakhstan", "Armenia", "Uzbekistan", "Georgia", "Croatia"}
	notePool        = []string{
		"Strong first touch, presses well.",
		"Quick over the first ten yards.",
		"Reads the game early and switches play often.",
		"Needs minutes against stronger sides.",
		"Set-piece threat, dominant in the air.",
	}
)

// seedDataset builds the fake league. A totalPlayers of zero keeps the
// default per-league spread; anything else is split round-robin. All
// randomness, ids included, comes from rng so one seed always produces
// the same dataset.
func seedDataset(rng *rand.Rand, totalPlayers int) *dataset {
	d := &dataset{tournaments: make([]statsapi.Tournament, len(tournamentSeed))}
	copy(d.tournaments, tournamentSeed)

	spread := make([]int, len(defaultSpread))
	copy(spread, defaultSpread)
	if totalPlayers > 0 {
		for i := range spread {
			spread[i] = 0
		}
		for i := 0; i < totalPlayers; i++ {
			spread[i%len(spread)]++
		}
	}

	now := wireNow()
	for i := range d.tournaments {
		d.tournaments[i].LastUpdate = now
		for n := 0; n < spread[i]; n++ {
			d.players = append(d.players, randomPlayer(rng, d.tournaments[i].ID))
		}
	}
	return d
}

func randomPlayer(rng *rand.Rand, tournamentID int) statsapi.Player {
	position := positionPool[rng.Intn(len(positionPool))]
	name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	minutes := rng.Intn(2701)

	var goals, assists int
	switch position {
	case "FW":
		goals, assists = rng.Intn(22), rng.Intn(10)
	case "MF":
		goals, assists = rng.Intn(12), rng.Intn(14)
	case "DF":
		goals, assists = rng.Intn(5), rng.Intn(6)
	}
	if minutes < 90 {
		goals, assists = 0, 0
	}
	shots := goals*2 + rng.Intn(28)

	xg := 0.0
	if minutes > 0 {
		xg = round2(float64(goals)*(0.6+rng.Float64()*0.9) + rng.Float64()*0.8)
	}

	status := statsapi.StatusNonInteresting
	notes := ""
	switch roll := rng.Intn(100); {
	case roll >= 97:
		status = statsapi.StatusMyPlayer
	case roll >= 92:
		status = statsapi.StatusToWatch
	case roll >= 82:
		status = statsapi.StatusInteresting
	}
	if status != statsapi.StatusNonInteresting {
		notes = notePool[rng.Intn(len(notePool))]
	}

	created := time.Now().UTC().Add(-time.Duration(rng.Intn(365*24)) * time.Hour)
	return statsapi.Player{
		ID:             uuid.Must(uuid.NewRandomFromReader(rng)).String(),
		PlayerName:     name,
		TeamName:       teamNames[rng.Intn(len(teamNames))],
		Position:       position,
		Age:            16 + rng.Intn(23),
		PlayerNumber:   1 + rng.Intn(40),
		Height:         165 + rng.Intn(36),
		Weight:         60 + rng.Intn(36),
		Citizenship:    citizenshipPool[rng.Intn(len(citizenshipPool))],
		MinutesPlayed:  minutes,
		Goals:          goals,
		Assists:        assists,
		Shots:          shots,
		ShotsOnTarget:  shots * (30 + rng.Intn(50)) / 100,
		PassesTotal:    120 + rng.Intn(1400),
		PassesAccuracy: round1(55 + rng.Float64()*40),
		Tackles:        rng.Intn(90),
		Interceptions:  rng.Intn(70),
		YellowCards:    rng.Intn(9),
		RedCards:       rng.Intn(2),
		XG:             xg,
		PlayerIndex:    round2(3 + rng.Float64()*6.5),
		Notes:          notes,
		TournamentID:   tournamentID,
		TrackingStatus: status,
		CreatedAt:      created.Format(wireTime),
		UpdatedAt:      created.Format(wireTime),
	}
}

func (d *dataset) size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.players)
}

// list applies the full filter set, sorts and pages. Unknown sort fields
// fall back to name order rather than failing; the gateway validates
// fields before they ever reach the backend.
func (d *dataset) list(p statsapi.PlayerListParams) statsapi.PlayerList {
	d.mu.RLock()
	matched := make([]statsapi.Player, 0, len(d.players))
	for _, pl := range d.players {
		if matchesList(pl, p) {
			matched = append(matched, pl)
		}
	}
	d.mu.RUnlock()

	sortPlayers(matched, p.SortField, p.SortOrder)
	return paginate(matched, p.Page, clampLimit(p.PerPage, defaultPerPage, maxPerPage))
}

func matchesList(pl statsapi.Player, p statsapi.PlayerListParams) bool {
	if p.TournamentID != nil && pl.TournamentID != *p.TournamentID {
		return false
	}
	if p.TeamName != "" && !strings.EqualFold(pl.TeamName, p.TeamName) {
		return false
	}
	if p.Position != "" && !strings.EqualFold(pl.Position, p.Position) {
		return false
	}
	if p.TrackingStatus != "" && pl.TrackingStatus != p.TrackingStatus {
		return false
	}
	if p.MinGoals != nil && pl.Goals < *p.MinGoals {
		return false
	}
	if p.MinAssists != nil && pl.Assists < *p.MinAssists {
		return false
	}
	if p.MinMinutes != nil && pl.MinutesPlayed < *p.MinMinutes {
		return false
	}
	if q := strings.TrimSpace(p.SearchQuery); q != "" {
		if !containsFold(pl.PlayerName, q) && !containsFold(pl.TeamName, q) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortPlayers(players []statsapi.Player, field, order string) {
	desc := order == "desc"
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if desc {
			a, b = b, a
		}
		switch field {
		case "team_name":
			if a.TeamName != b.TeamName {
				return a.TeamName < b.TeamName
			}
		case "position":
			if a.Position != b.Position {
				return a.Position < b.Position
			}
		case "goals":
			if a.Goals != b.Goals {
				return a.Goals < b.Goals
			}
		case "assists":
			if a.Assists != b.Assists {
				return a.Assists < b.Assists
			}
		case "shots":
			if a.Shots != b.Shots {
				return a.Shots < b.Shots
			}
		case "passes_total":
			if a.PassesTotal != b.PassesTotal {
				return a.PassesTotal < b.PassesTotal
			}
		case "minutes_played":
			if a.MinutesPlayed != b.MinutesPlayed {
				return a.MinutesPlayed < b.MinutesPlayed
			}
		case "created_at":
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.ID < b.ID
	})
}

func clampLimit(n, fallback, max int) int {
	if n < 1 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

// paginate slices one page out of the matched set. Pages past the end
// return an empty data array with the envelope totals intact, so
// total_pages always equals ceil(total/per_page).
func paginate(players []statsapi.Player, page, perPage int) statsapi.PlayerList {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	total := len(players)
	totalPages := (total + perPage - 1) / perPage

	data := make([]statsapi.Player, 0, perPage)
	if start := (page - 1) * perPage; start < total {
		end := start + perPage
		if end > total {
			end = total
		}
		data = append(data, players[start:end]...)
	}
	return statsapi.PlayerList{
		Success:    true,
		Timestamp:  wireNow(),
		Data:       data,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

func (d *dataset) get(id string) (statsapi.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, pl := range d.players {
		if pl.ID == id {
			return pl, true
		}
	}
	return statsapi.Player{}, false
}

// search matches the query against player names, shortest name first so
// near-exact hits surface above long partial matches.
func (d *dataset) search(p statsapi.SearchParams) statsapi.SearchResponse {
	d.mu.RLock()
	matched := make([]statsapi.Player, 0, 16)
	for _, pl := range d.players {
		if p.TournamentID != nil && pl.TournamentID != *p.TournamentID {
			continue
		}
		if !containsFold(pl.PlayerName, strings.TrimSpace(p.Query)) {
			continue
		}
		matched = append(matched, pl)
	}
	d.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if len(a.PlayerName) != len(b.PlayerName) {
			return len(a.PlayerName) < len(b.PlayerName)
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.ID < b.ID
	})

	limit := clampLimit(p.Limit, defaultSearchLimit, maxSearchLimit)
	results := make([]statsapi.SearchResult, 0, limit)
	for _, pl := range matched {
		if len(results) == limit {
			break
		}
		results = append(results, statsapi.SearchResult{
			ID:            pl.ID,
			PlayerName:    pl.PlayerName,
			TeamName:      pl.TeamName,
			Position:      pl.Position,
			TournamentID:  pl.TournamentID,
			CurrentStatus: pl.TrackingStatus,
			BasicStats: map[string]any{
				"goals":          pl.Goals,
				"assists":        pl.Assists,
				"minutes_played": pl.MinutesPlayed,
			},
		})
	}
	return statsapi.SearchResponse{Query: p.Query, Results: results, TotalFound: len(matched)}
}

func (d *dataset) updateStatus(id string, status statsapi.TrackingStatus, notes string) (statsapi.StatusChange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.players {
		if d.players[i].ID != id {
			continue
		}
		prev := d.players[i].TrackingStatus
		d.players[i].TrackingStatus = status
		if notes != "" {
			d.players[i].Notes = notes
		}
		d.players[i].UpdatedAt = wireNow()
		return statsapi.StatusChange{PlayerID: id, NewStatus: status, PreviousStatus: prev}, true
	}
	return statsapi.StatusChange{}, false
}

func (d *dataset) tracked(p statsapi.TrackedParams) statsapi.PlayerList {
	d.mu.RLock()
	matched := make([]statsapi.Player, 0, 32)
	for _, pl := range d.players {
		if pl.TrackingStatus == statsapi.StatusNonInteresting {
			continue
		}
		if p.TournamentID != nil && pl.TournamentID != *p.TournamentID {
			continue
		}
		matched = append(matched, pl)
	}
	d.mu.RUnlock()

	sortPlayers(matched, "player_name", "asc")
	return paginate(matched, p.Page, clampLimit(p.PerPage, defaultPerPage, maxPerPage))
}

// rawData serves the dump view in insertion order.
func (d *dataset) rawData(p statsapi.RawDataParams) statsapi.PlayerList {
	d.mu.RLock()
	matched := make([]statsapi.Player, 0, len(d.players))
	for _, pl := range d.players {
		if p.TournamentID != nil && pl.TournamentID != *p.TournamentID {
			continue
		}
		if p.Position != "" && !strings.EqualFold(pl.Position, p.Position) {
			continue
		}
		if p.MinGoals != nil && pl.Goals < *p.MinGoals {
			continue
		}
		if p.MaxGoals != nil && pl.Goals > *p.MaxGoals {
			continue
		}
		if p.MinAssists != nil && pl.Assists < *p.MinAssists {
			continue
		}
		if p.MaxAssists != nil && pl.Assists > *p.MaxAssists {
			continue
		}
		if q := strings.TrimSpace(p.Search); q != "" {
			if !containsFold(pl.PlayerName, q) && !containsFold(pl.TeamName, q) {
				continue
			}
		}
		matched = append(matched, pl)
	}
	d.mu.RUnlock()

	return paginate(matched, p.Page, clampLimit(p.Limit, defaultRawLimit, maxRawLimit))
}

func (d *dataset) listTournaments() []statsapi.Tournament {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]statsapi.Tournament, len(d.tournaments))
	copy(out, d.tournaments)
	for i := range out {
		count := 0
		for _, pl := range d.players {
			if pl.TournamentID == out[i].ID {
				count++
			}
		}
		out[i].PlayersCount = count
	}
	return out
}

func (d *dataset) stats(tournamentID int) (statsapi.TournamentStats, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.tournamentIndexLocked(tournamentID) < 0 {
		return statsapi.TournamentStats{}, false
	}

	teams := make(map[string]struct{})
	positions := make(map[string]struct{})
	pool := make([]statsapi.Player, 0, 64)
	tracked := 0
	for _, pl := range d.players {
		if pl.TournamentID != tournamentID {
			continue
		}
		pool = append(pool, pl)
		teams[pl.TeamName] = struct{}{}
		positions[pl.Position] = struct{}{}
		if pl.TrackingStatus != statsapi.StatusNonInteresting {
			tracked++
		}
	}

	var goals, assists, shots, minutes, age int
	var xg, index, accuracy float64
	for _, pl := range pool {
		goals += pl.Goals
		assists += pl.Assists
		shots += pl.Shots
		minutes += pl.MinutesPlayed
		age += pl.Age
		xg += pl.XG
		index += pl.PlayerIndex
		accuracy += pl.PassesAccuracy
	}

	stats := statsapi.TournamentStats{
		TournamentID:   tournamentID,
		TotalPlayers:   len(pool),
		TeamsCount:     len(teams),
		PositionsCount: len(positions),
		TrackedPlayers: tracked,
		Averages:       map[string]float64{},
		Totals: map[string]int{
			"goals":          goals,
			"assists":        assists,
			"shots":          shots,
			"minutes_played": minutes,
		},
		TopScorers:   leaderboard(pool, statsBoardSize, func(pl statsapi.Player) float64 { return float64(pl.Goals) }),
		TopAssisters: leaderboard(pool, statsBoardSize, func(pl statsapi.Player) float64 { return float64(pl.Assists) }),
	}
	if n := float64(len(pool)); n > 0 {
		stats.Averages["age"] = round2(float64(age) / n)
		stats.Averages["goals"] = round2(float64(goals) / n)
		stats.Averages["assists"] = round2(float64(assists) / n)
		stats.Averages["minutes_played"] = round2(float64(minutes) / n)
		stats.Averages["xg"] = round2(xg / n)
		stats.Averages["player_index"] = round2(index / n)
		stats.Averages["passes_accuracy"] = round2(accuracy / n)
	}
	return stats, true
}

// top builds the four per-metric boards. The stub keeps a single season
// snapshot, so both periods serve the same numbers.
func (d *dataset) top(p statsapi.TopParams) statsapi.TopPerformers {
	d.mu.RLock()
	pool := make([]statsapi.Player, 0, len(d.players))
	for _, pl := range d.players {
		if p.TournamentID != nil && pl.TournamentID != *p.TournamentID {
			continue
		}
		pool = append(pool, pl)
	}
	d.mu.RUnlock()

	period := p.Period
	if period == "" {
		period = statsapi.PeriodAllTime
	}
	limit := clampLimit(p.Limit, defaultTopLimit, maxTopLimit)
	return statsapi.TopPerformers{
		Goals:   leaderboard(pool, limit, func(pl statsapi.Player) float64 { return float64(pl.Goals) }),
		Assists: leaderboard(pool, limit, func(pl statsapi.Player) float64 { return float64(pl.Assists) }),
		Shots:   leaderboard(pool, limit, func(pl statsapi.Player) float64 { return float64(pl.Shots) }),
		Passes:  leaderboard(pool, limit, func(pl statsapi.Player) float64 { return float64(pl.PassesTotal) }),
		Period:  period,
	}
}

// leaderboard ranks players on one metric. Zero-metric players are left
// off the board, and the per-90 rate is zero for players without minutes.
func leaderboard(pool []statsapi.Player, limit int, metric func(statsapi.Player) float64) []statsapi.Performance {
	ranked := make([]statsapi.Performance, 0, len(pool))
	for _, pl := range pool {
		value := metric(pl)
		if value <= 0 {
			continue
		}
		per90 := 0.0
		if pl.MinutesPlayed > 0 {
			per90 = round2(value / float64(pl.MinutesPlayed) * 90)
		}
		ranked = append(ranked, statsapi.Performance{
			ID:            pl.ID,
			PlayerName:    pl.PlayerName,
			TeamName:      pl.TeamName,
			Position:      pl.Position,
			TournamentID:  pl.TournamentID,
			MetricValue:   value,
			MinutesPlayed: pl.MinutesPlayed,
			Per90Value:    per90,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.MetricValue != b.MetricValue {
			return a.MetricValue > b.MetricValue
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.ID < b.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// upload pretends to parse the sheet: one row per player already in the
// tournament, or a size-derived count when the tournament is empty.
func (d *dataset) upload(tournamentID int, fileName string, size int64) (statsapi.UploadReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.tournamentIndexLocked(tournamentID)
	if idx < 0 {
		return statsapi.UploadReport{}, false
	}

	existing := 0
	for i := range d.players {
		if d.players[i].TournamentID == tournamentID {
			existing++
		}
	}
	rows := existing
	added, updated := 0, existing
	if rows == 0 {
		rows = int(size/256) + 1
		added, updated = rows, 0
	}

	now := wireNow()
	d.tournaments[idx].LastUpdate = now
	return statsapi.UploadReport{
		FileName:       fileName,
		TournamentID:   tournamentID,
		TotalRows:      rows,
		MainTable:      statsapi.TableDelta{Added: added, Updated: updated},
		LastRoundTable: statsapi.TableDelta{Added: rows},
		UploadTime:     now,
	}, true
}

func (d *dataset) clear(tournamentID int) (statsapi.ClearReport, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.tournamentIndexLocked(tournamentID)
	if idx < 0 {
		return statsapi.ClearReport{}, false
	}

	kept := d.players[:0]
	removed := 0
	for _, pl := range d.players {
		if pl.TournamentID == tournamentID {
			removed++
			continue
		}
		kept = append(kept, pl)
	}
	d.players = kept
	d.tournaments[idx].LastUpdate = wireNow()
	return statsapi.ClearReport{TournamentID: tournamentID, PlayersRemoved: removed}, true
}

func (d *dataset) tournamentIndexLocked(id int) int {
	for i := range d.tournaments {
		if d.tournaments[i].ID == id {
			return i
		}
	}
	return -1
}

func wireNow() string {
	return time.Now().UTC().Format(wireTime)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
