package board

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// statusInvalidates lists the cached views a tracking-status change makes
// stale: every player list plus the player's own detail.
var statusInvalidates = []string{
	query.NSPlayers,
	query.NSTracked,
	query.NSPlayer,
	query.NSSearch,
}

// StatusMutator applies tracking-status changes. There is no optimistic
// write: caches are only invalidated after the backend confirmed the
// change, and a failed update leaves every cached view untouched.
type StatusMutator struct {
	client  statsapi.StatsClient
	cache   *query.Cache
	metrics metrics.Metrics
	usage   metrics.UsageStore
}

// NewStatusMutator creates a mutator over the shared cache.
func NewStatusMutator(client statsapi.StatsClient, cache *query.Cache, m metrics.Metrics, usage metrics.UsageStore) *StatusMutator {
	return &StatusMutator{
		client:  client,
		cache:   cache,
		metrics: m,
		usage:   usage,
	}
}

// Update sets a player's tracking status and notes.
func (m *StatusMutator) Update(ctx context.Context, playerID string, status statsapi.TrackingStatus, notes string) (statsapi.StatusChange, error) {
	change, err := m.client.UpdatePlayerStatus(ctx, playerID, status, notes)
	if err != nil {
		m.metrics.IncStatusUpdate("failure")
		return statsapi.StatusChange{}, err
	}

	m.metrics.IncStatusUpdate("success")
	m.usage.Increment(metrics.UsageStatusUpdates)
	m.cache.Invalidate(statusInvalidates...)
	log.Info("Updated tracking status", "player_id", playerID, "status", status)
	return change, nil
}
