package upload

import (
	"errors"
	"io"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 10 << 20 // 10 MiB

// Validation failures surfaced before any network call.
var (
	ErrNoFile             = errors.New("no file provided")
	ErrFileType           = errors.New("unsupported file type, only .xlsx and .xls are accepted")
	ErrFileTooLarge       = errors.New("file exceeds the 10 MiB limit")
	ErrSeasonMissing      = errors.New("season is required")
	ErrRoundMissing       = errors.New("round is required")
	ErrTournamentMismatch = errors.New("filename points at a different tournament")
)

// SlotStatus tracks one file through the upload pipeline.
type SlotStatus string

const (
	StatusIdle       SlotStatus = "idle"
	StatusValidating SlotStatus = "validating"
	StatusUploading  SlotStatus = "uploading"
	StatusDone       SlotStatus = "done"
	StatusFailed     SlotStatus = "failed"
)

// File is one submitted spreadsheet.
type File struct {
	Name string
	Size int64
	Data io.Reader
}

// Request is one upload batch: up to one file per stat slice for a single
// tournament round.
type Request struct {
	TournamentID int
	Season       string
	Round        int
	Files        map[statsapi.SliceKind]File
}

// SlotResult is the final state of one slice's slot. Slots fail
// independently; a failed TOTAL never blocks the PER90 next to it.
type SlotResult struct {
	Kind        statsapi.SliceKind
	FileName    string
	Status      SlotStatus
	Transitions []SlotStatus
	Report      *statsapi.UploadReport
	Err         error
	Duration    time.Duration
}

// BatchResult summarises a whole upload batch.
type BatchResult struct {
	ID           string
	TournamentID int
	Season       string
	Round        int
	Slots        []SlotResult
	Succeeded    int
	Failed       int
	Duration     time.Duration
}
