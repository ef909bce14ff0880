package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a new PrefsStore backed by the given database.
func New(db *sql.DB) PrefsStore {
	return &store{
		db: db,
	}
}

// Columns loads an owner's saved selection. An owner with nothing stored
// gets the defaults. Stored names that have since left the catalog are
// skipped rather than failing the whole load.
func (s *store) Columns(owner string) (ColumnSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob []byte
	err := s.db.QueryRow("SELECT value FROM column_prefs WHERE owner = ?", owner).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultColumns(), nil
	}
	if err != nil {
		return ColumnSet{}, err
	}

	var names []string
	if err := msgpack.Unmarshal(blob, &names); err != nil {
		return ColumnSet{}, fmt.Errorf("decoding column prefs for %q: %w", owner, err)
	}

	set := ColumnSet{visible: make(map[string]bool, len(names))}
	for _, name := range names {
		if !KnownColumn(name) {
			log.Warn("Skipping stored column no longer in catalog", "owner", owner, "column", name)
			continue
		}
		set.visible[name] = true
	}
	return set, nil
}

// SaveColumns upserts an owner's selection.
func (s *store) SaveColumns(owner string, set ColumnSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := msgpack.Marshal(set.Visible())
	if err != nil {
		return fmt.Errorf("encoding column prefs for %q: %w", owner, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO column_prefs (owner, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, owner, blob, time.Now().Unix())
	return err
}

// DeleteColumns drops an owner's stored selection, so the next load sees
// the defaults again.
func (s *store) DeleteColumns(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM column_prefs WHERE owner = ?", owner)
	return err
}

// LastUpload returns the most recent accepted file for a tournament and
// stat slice, or nil when none has been recorded.
func (s *store) LastUpload(tournamentID int, kind statsapi.SliceKind) (*LastUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec LastUpload
	var uploadedAt int64
	err := s.db.QueryRow(`
		SELECT tournament_id, kind, season, round, file_name, uploaded_at
		FROM upload_history
		WHERE tournament_id = ? AND kind = ?
	`, tournamentID, string(kind)).Scan(&rec.TournamentID, &rec.Kind, &rec.Season, &rec.Round, &rec.FileName, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	return &rec, nil
}

// SaveLastUpload upserts the record for the file's tournament and slice.
func (s *store) SaveLastUpload(rec LastUpload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uploadedAt := rec.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO upload_history (tournament_id, kind, season, round, file_name, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tournament_id, kind) DO UPDATE SET
			season = excluded.season,
			round = excluded.round,
			file_name = excluded.file_name,
			uploaded_at = excluded.uploaded_at
	`, rec.TournamentID, string(rec.Kind), rec.Season, rec.Round, rec.FileName, uploadedAt.Unix())
	return err
}
