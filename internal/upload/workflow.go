package upload

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/prefs"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// slotOrder fixes the processing order so batch results are deterministic.
var slotOrder = []statsapi.SliceKind{statsapi.SliceTotal, statsapi.SlicePer90}

// invalidatedNamespaces lists every cached view a successful import can
// change.
var invalidatedNamespaces = []string{
	query.NSPlayers,
	query.NSTracked,
	query.NSPlayer,
	query.NSSearch,
	query.NSTournaments,
	query.NSTop,
	query.NSStats,
	query.NSRaw,
}

type uploader struct {
	client  statsapi.StatsClient
	cache   *query.Cache
	prefs   prefs.PrefsStore
	usage   metrics.UsageStore
	metrics metrics.Metrics
	now     func() time.Time
}

// New creates an Uploader that pushes accepted files to the stats backend
// and keeps the cache and upload history in step with what it imported.
func New(client statsapi.StatsClient, cache *query.Cache, prefsStore prefs.PrefsStore, usage metrics.UsageStore, m metrics.Metrics) Uploader {
	return &uploader{
		client:  client,
		cache:   cache,
		prefs:   prefsStore,
		usage:   usage,
		metrics: m,
		now:     time.Now,
	}
}

// Run processes one upload batch. Batch-level validation fails the whole
// request; everything after that is per slot, so one bad file never blocks
// the other slice.
func (u *uploader) Run(ctx context.Context, req Request) (*BatchResult, error) {
	if strings.TrimSpace(req.Season) == "" {
		return nil, ErrSeasonMissing
	}
	if req.Round < 1 {
		return nil, ErrRoundMissing
	}
	if len(req.Files) == 0 {
		return nil, ErrNoFile
	}

	start := u.now()
	batch := &BatchResult{
		ID:           uuid.New().String(),
		TournamentID: req.TournamentID,
		Season:       req.Season,
		Round:        req.Round,
	}
	log.Info("Starting upload batch",
		"batch_id", batch.ID,
		"tournament_id", req.TournamentID,
		"season", req.Season,
		"round", req.Round,
		"files", len(req.Files),
	)

	tournaments := u.tournaments(ctx)

	for _, kind := range orderedKinds(req.Files) {
		slot := u.runSlot(ctx, req, kind, req.Files[kind], tournaments)
		batch.Slots = append(batch.Slots, slot)
		if slot.Status == StatusDone {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	if batch.Succeeded > 0 {
		u.cache.Invalidate(invalidatedNamespaces...)
	}
	batch.Duration = u.now().Sub(start)
	log.Info("Upload batch finished",
		"batch_id", batch.ID,
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"duration", batch.Duration,
	)
	return batch, nil
}

func (u *uploader) runSlot(ctx context.Context, req Request, kind statsapi.SliceKind, file File, tournaments []statsapi.Tournament) (slot SlotResult) {
	start := u.now()
	slot = SlotResult{
		Kind:        kind,
		FileName:    file.Name,
		Status:      StatusIdle,
		Transitions: []SlotStatus{StatusIdle},
	}
	advance := func(next SlotStatus) {
		slot.Status = next
		slot.Transitions = append(slot.Transitions, next)
	}
	fail := func(err error) {
		slot.Err = err
		advance(StatusFailed)
		u.metrics.IncUpload(string(kind), "failure")
		slot.Duration = u.now().Sub(start)
		log.Error("Upload slot failed", "kind", kind, "file", file.Name, "error", err)
	}

	advance(StatusValidating)
	if err := validateFile(kind, file); err != nil {
		fail(err)
		return slot
	}
	if err := checkTournament(req.TournamentID, file.Name, tournaments); err != nil {
		fail(err)
		return slot
	}

	advance(StatusUploading)
	report, err := u.client.UploadFile(ctx, statsapi.UploadParams{
		TournamentID: req.TournamentID,
		Kind:         kind,
		Season:       req.Season,
		Round:        req.Round,
		FileName:     file.Name,
	}, file.Data)
	if err != nil {
		fail(err)
		return slot
	}

	slot.Report = &report
	advance(StatusDone)
	slot.Duration = u.now().Sub(start)
	u.metrics.IncUpload(string(kind), "success")
	u.usage.Increment(metrics.UsageUploads)

	if err := u.prefs.SaveLastUpload(prefs.LastUpload{
		TournamentID: req.TournamentID,
		Kind:         kind,
		Season:       req.Season,
		Round:        req.Round,
		FileName:     file.Name,
		UploadedAt:   u.now(),
	}); err != nil {
		log.Error("Failed to record last upload", "tournament_id", req.TournamentID, "kind", kind, "error", err)
	}
	return slot
}

// orderedKinds fixes slot order: known slices first in pipeline order, then
// anything else so unknown kinds still surface as failed slots instead of
// vanishing.
func orderedKinds(files map[statsapi.SliceKind]File) []statsapi.SliceKind {
	kinds := make([]statsapi.SliceKind, 0, len(files))
	for _, kind := range slotOrder {
		if _, ok := files[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	var rest []statsapi.SliceKind
	for kind := range files {
		if !kind.Known() {
			rest = append(rest, kind)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(kinds, rest...)
}

// tournaments loads the tournament list for filename detection. Detection
// is a guard rail, not a gate: when the list is unavailable the upload
// proceeds against the selected tournament.
func (u *uploader) tournaments(ctx context.Context) []statsapi.Tournament {
	res, err := query.Lookup(ctx, u.cache, query.TournamentsKey(), query.Options{}, func(ctx context.Context) ([]statsapi.Tournament, error) {
		return u.client.ListTournaments(ctx)
	})
	if err != nil {
		log.Warn("Tournament list unavailable, skipping filename detection", "error", err)
		return nil
	}
	return res.Value
}

func validateFile(kind statsapi.SliceKind, file File) error {
	if !kind.Known() {
		return fmt.Errorf("%w: %q", statsapi.ErrUnknownKind, kind)
	}
	if strings.TrimSpace(file.Name) == "" || file.Data == nil {
		return ErrNoFile
	}
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".xlsx", ".xls":
	default:
		return fmt.Errorf("%w: %q", ErrFileType, filepath.Ext(file.Name))
	}
	if file.Size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size)
	}
	return nil
}

// checkTournament rejects a file whose name confidently points at a
// different tournament than the one selected.
func checkTournament(selectedID int, filename string, tournaments []statsapi.Tournament) error {
	suggestions := Detect(filename, tournaments)
	if len(suggestions) == 0 {
		return nil
	}
	best := suggestions[0]
	if best.Confidence > 0.8 && best.Tournament.ID != selectedID {
		return fmt.Errorf("%w: %q looks like %s (%s)",
			ErrTournamentMismatch, filename, best.Tournament.Name, strings.Join(best.Reasons, ", "))
	}
	return nil
}
