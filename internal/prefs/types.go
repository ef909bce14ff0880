package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// store handles all database operations for board preferences.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ErrUnknownColumn is returned when a column name is not in the catalog.
var ErrUnknownColumn = errors.New("unknown column")

// Player-table column keys, in display order.
const (
	ColMinutesPlayed  = "minutes_played"
	ColGoals          = "goals"
	ColAssists        = "assists"
	ColShots          = "shots"
	ColShotsOnTarget  = "shots_on_target"
	ColPassesTotal    = "passes_total"
	ColPassesAccuracy = "passes_accuracy"
	ColTackles        = "tackles"
	ColInterceptions  = "interceptions"
	ColYellowCards    = "yellow_cards"
	ColRedCards       = "red_cards"
	ColXG             = "xg"
)

var catalog = []string{
	ColMinutesPlayed,
	ColGoals,
	ColAssists,
	ColShots,
	ColShotsOnTarget,
	ColPassesTotal,
	ColPassesAccuracy,
	ColTackles,
	ColInterceptions,
	ColYellowCards,
	ColRedCards,
	ColXG,
}

var minimumCols = []string{ColMinutesPlayed, ColGoals, ColAssists, ColXG}

// Columns returns the full column catalog in display order.
func Columns() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// KnownColumn reports whether name is a catalog column.
func KnownColumn(name string) bool {
	for _, col := range catalog {
		if col == name {
			return true
		}
	}
	return false
}

// ColumnSet is a selection of visible player-table columns.
type ColumnSet struct {
	visible map[string]bool
}

// NewColumnSet builds a selection from explicit column names.
func NewColumnSet(names ...string) (ColumnSet, error) {
	set := ColumnSet{visible: make(map[string]bool, len(names))}
	for _, name := range names {
		if !KnownColumn(name) {
			return ColumnSet{}, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		set.visible[name] = true
	}
	return set, nil
}

// AllColumns selects every catalog column.
func AllColumns() ColumnSet {
	set := ColumnSet{visible: make(map[string]bool, len(catalog))}
	for _, col := range catalog {
		set.visible[col] = true
	}
	return set
}

// MinimumColumns selects exactly the baseline subset, regardless of any
// prior selection.
func MinimumColumns() ColumnSet {
	set := ColumnSet{visible: make(map[string]bool, len(minimumCols))}
	for _, col := range minimumCols {
		set.visible[col] = true
	}
	return set
}

// DefaultColumns is the selection used when an owner has nothing stored.
// Every column is visible out of the box.
func DefaultColumns() ColumnSet {
	return AllColumns()
}

// Visible lists the selected columns in catalog order.
func (s ColumnSet) Visible() []string {
	out := make([]string, 0, len(s.visible))
	for _, col := range catalog {
		if s.visible[col] {
			out = append(out, col)
		}
	}
	return out
}

// IsVisible reports whether a column is selected.
func (s ColumnSet) IsVisible(name string) bool {
	return s.visible[name]
}

// Show selects a column.
func (s *ColumnSet) Show(name string) error {
	if !KnownColumn(name) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if s.visible == nil {
		s.visible = make(map[string]bool)
	}
	s.visible[name] = true
	return nil
}

// Hide deselects a column.
func (s *ColumnSet) Hide(name string) error {
	if !KnownColumn(name) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	delete(s.visible, name)
	return nil
}

// Toggle flips a column and reports its new visibility.
func (s *ColumnSet) Toggle(name string) (bool, error) {
	if s.IsVisible(name) {
		return false, s.Hide(name)
	}
	return true, s.Show(name)
}

// Clone returns an independent copy.
func (s ColumnSet) Clone() ColumnSet {
	out := ColumnSet{visible: make(map[string]bool, len(s.visible))}
	for col, on := range s.visible {
		if on {
			out.visible[col] = true
		}
	}
	return out
}

// Equal reports whether both sets select the same columns.
func (s ColumnSet) Equal(other ColumnSet) bool {
	if len(s.visible) != len(other.visible) {
		return false
	}
	for col := range s.visible {
		if !other.visible[col] {
			return false
		}
	}
	return true
}

// Draft stages column edits. Nothing reaches the saved selection until
// Apply, so a closed picker leaves the table untouched.
type Draft struct {
	saved  ColumnSet
	staged ColumnSet
}

// NewDraft starts a draft from the owner's saved selection.
func NewDraft(saved ColumnSet) *Draft {
	return &Draft{saved: saved.Clone(), staged: saved.Clone()}
}

// Staged returns the current staged selection.
func (d *Draft) Staged() ColumnSet {
	return d.staged.Clone()
}

// Saved returns the selection as of the last Apply.
func (d *Draft) Saved() ColumnSet {
	return d.saved.Clone()
}

// Show stages a column as visible.
func (d *Draft) Show(name string) error {
	return d.staged.Show(name)
}

// Hide stages a column as hidden.
func (d *Draft) Hide(name string) error {
	return d.staged.Hide(name)
}

// Toggle flips a staged column and reports its new visibility.
func (d *Draft) Toggle(name string) (bool, error) {
	return d.staged.Toggle(name)
}

// SelectAll replaces the staged selection with every column.
func (d *Draft) SelectAll() {
	d.staged = AllColumns()
}

// SelectMinimum replaces the staged selection with the baseline subset.
func (d *Draft) SelectMinimum() {
	d.staged = MinimumColumns()
}

// ResetToDefaults replaces the staged selection with the defaults.
func (d *Draft) ResetToDefaults() {
	d.staged = DefaultColumns()
}

// Dirty reports whether the staged selection differs from the saved one.
func (d *Draft) Dirty() bool {
	return !d.staged.Equal(d.saved)
}

// Apply promotes the staged selection and returns it for persistence.
func (d *Draft) Apply() ColumnSet {
	d.saved = d.staged.Clone()
	return d.saved.Clone()
}

// Discard drops staged edits, reverting to the saved selection.
func (d *Draft) Discard() {
	d.staged = d.saved.Clone()
}

// LastUpload records the most recent accepted file for a tournament and
// stat slice. It prefills the next upload form.
type LastUpload struct {
	TournamentID int                `json:"tournament_id"`
	Kind         statsapi.SliceKind `json:"kind"`
	Season       string             `json:"season"`
	Round        int                `json:"round"`
	FileName     string             `json:"file_name"`
	UploadedAt   time.Time          `json:"uploaded_at"`
}

// SuggestedRound is the prefill for the next upload form. It is a UX
// default only; callers may submit any round.
func (u *LastUpload) SuggestedRound() int {
	if u == nil {
		return 1
	}
	return u.Round + 1
}
