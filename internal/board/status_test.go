package board

import (
	"context"
	"testing"

	"github.com/scoutdeck/scoutdeck/internal/metrics"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMutator(t *testing.T) (*StatusMutator, *statsapi.MockClient, *query.Cache, *metrics.Mock, *metrics.MockUsage) {
	t.Helper()
	client := statsapi.NewMockClient()
	metr := metrics.NewMock()
	usage := metrics.NewMockUsage()
	cache := query.New(metr)
	return NewStatusMutator(client, cache, metr, usage), client, cache, metr, usage
}

// seedEntry loads one synthetic value into the cache under the given key.
func seedEntry(t *testing.T, cache *query.Cache, key query.Key) {
	t.Helper()
	_, _, err := cache.Get(context.Background(), key, query.Options{}, func(context.Context) (any, error) {
		return "seeded", nil
	})
	require.NoError(t, err)
}

func seedAllNamespaces(t *testing.T, cache *query.Cache) {
	t.Helper()
	seedEntry(t, cache, query.PlayersKey(statsapi.PlayerListParams{Page: 1, PerPage: 50}))
	seedEntry(t, cache, query.TrackedKey(statsapi.TrackedParams{Page: 1, PerPage: 50}))
	seedEntry(t, cache, query.PlayerKey("p-7"))
	seedEntry(t, cache, query.SearchKey(statsapi.SearchParams{Query: "ivan", Limit: 20}))
	seedEntry(t, cache, query.TournamentsKey())
	require.Equal(t, 5, cache.Len())
}

func TestUpdate_SuccessInvalidatesPlayerNamespaces(t *testing.T) {
	mutator, client, cache, metr, usage := setupMutator(t)
	seedAllNamespaces(t, cache)
	client.UpdatePlayerStatusFunc = func(playerID string, status statsapi.TrackingStatus, _ string) (statsapi.StatusChange, error) {
		return statsapi.StatusChange{
			PlayerID:       playerID,
			NewStatus:      status,
			PreviousStatus: statsapi.StatusNonInteresting,
		}, nil
	}

	change, err := mutator.Update(context.Background(), "p-7", statsapi.StatusToWatch, "fast winger")

	require.NoError(t, err)
	assert.Equal(t, "p-7", change.PlayerID)
	assert.Equal(t, statsapi.StatusToWatch, change.NewStatus)
	assert.Equal(t, statsapi.StatusNonInteresting, change.PreviousStatus)

	require.Len(t, client.UpdatePlayerStatusCalls, 1)
	call := client.UpdatePlayerStatusCalls[0]
	assert.Equal(t, "p-7", call.PlayerID)
	assert.Equal(t, statsapi.StatusToWatch, call.Status)
	assert.Equal(t, "fast winger", call.Notes)

	// Player-derived views are gone; the tournament list is untouched.
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 4, metr.Invalidations())
	assert.Equal(t, 1, metr.StatusUpdates("success"))
	assert.Equal(t, 1, usage.Counter(metrics.UsageStatusUpdates))
}

func TestUpdate_FailureLeavesCacheIntact(t *testing.T) {
	mutator, client, cache, metr, usage := setupMutator(t)
	seedAllNamespaces(t, cache)
	client.UpdatePlayerStatusFunc = func(string, statsapi.TrackingStatus, string) (statsapi.StatusChange, error) {
		return statsapi.StatusChange{}, &statsapi.APIError{StatusCode: 502, Code: "bad_gateway", Message: "upstream unavailable"}
	}

	_, err := mutator.Update(context.Background(), "p-7", statsapi.StatusMyPlayer, "")

	require.Error(t, err)
	var apiErr *statsapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.StatusCode)

	// A failed mutation must not evict anything.
	assert.Equal(t, 5, cache.Len())
	assert.Equal(t, 0, metr.Invalidations())
	assert.Equal(t, 1, metr.StatusUpdates("failure"))
	assert.Equal(t, 0, usage.Counter(metrics.UsageStatusUpdates))
}
