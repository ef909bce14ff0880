package prefs

import "github.com/scoutdeck/scoutdeck/internal/statsapi"

// PrefsStore defines the interface for persisted board preferences.
type PrefsStore interface {
	Columns(owner string) (ColumnSet, error)
	SaveColumns(owner string, set ColumnSet) error
	DeleteColumns(owner string) error
	LastUpload(tournamentID int, kind statsapi.SliceKind) (*LastUpload, error)
	SaveLastUpload(rec LastUpload) error
}
