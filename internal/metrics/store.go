package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// store handles usage-counter database operations.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewUsageStore creates a new usage counter store.
func NewUsageStore(db *sql.DB) UsageStore {
	return &store{
		db: db,
	}
}

// Increment upserts a counter key and increments its value by one.
func (s *store) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.db.Prepare(`
		INSERT INTO usage_counters (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1;
	`)
	if err != nil {
		log.Error("Failed to prepare statement for usage increment", "error", err, "key", key)
		return
	}
	defer stmt.Close()

	_, err = stmt.Exec(key)
	if err != nil {
		log.Error("Failed to execute statement for usage increment", "error", err, "key", key)
	} else {
		log.Debug("Incremented usage counter", "key", key)
	}
}

// GetAll returns all usage counters from the database.
func (s *store) GetAll() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM usage_counters")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		counters[key] = value
	}
	return counters, rows.Err()
}

// Usage counter keys. Kept flat so the admin endpoint can dump them as-is.
const (
	UsagePlayersViews   = "board.players.views"
	UsageSearches       = "search.committed"
	UsageStatusUpdates  = "status.updates"
	UsageUploads        = "upload.files"
	UsageInvalidations  = "cache.invalidations"
	UsageTournamentWipe = "admin.clear"
)
