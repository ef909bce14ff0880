package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutdeck/scoutdeck/internal/prefs"
)

func TestGetColumnsHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	t.Run("owner is required", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/columns", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeAs[errorResponse](t, rr).Code)
	})

	t.Run("a new owner sees every column", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/columns?owner=scout-1", "")
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decodeAs[columnsResponse](t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, "scout-1", resp.Owner)
		assert.Equal(t, prefs.Columns(), resp.Visible)
		assert.Equal(t, prefs.Columns(), resp.All)
		assert.Equal(t, []string{"minutes_played", "goals", "assists", "xg"}, resp.Minimum)
	})
}

func TestSaveColumnsHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	t.Run("saves and reloads a selection", func(t *testing.T) {
		rr := doRequest(t, server, "PUT", "/api/columns",
			`{"owner":"scout-1","visible":["xg","goals","minutes_played"]}`)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decodeAs[columnsResponse](t, rr)
		assert.Equal(t, []string{"minutes_played", "goals", "xg"}, resp.Visible,
			"selections come back in catalog order")

		reload := decodeAs[columnsResponse](t, doRequest(t, server, "GET", "/api/columns?owner=scout-1", ""))
		assert.Equal(t, resp.Visible, reload.Visible)
	})

	t.Run("each owner keeps an independent selection", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/api/columns?owner=scout-2", "")
		assert.Equal(t, prefs.Columns(), decodeAs[columnsResponse](t, rr).Visible)
	})

	t.Run("unknown column names the catalog", func(t *testing.T) {
		rr := doRequest(t, server, "PUT", "/api/columns",
			`{"owner":"scout-1","visible":["goals","salary"]}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decodeAs[errorResponse](t, rr)
		assert.Equal(t, "unknown_column", resp.Code)
		assert.Contains(t, resp.Details, "catalog")
	})

	t.Run("owner is required", func(t *testing.T) {
		rr := doRequest(t, server, "PUT", "/api/columns", `{"visible":["goals"]}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("an empty selection is allowed", func(t *testing.T) {
		rr := doRequest(t, server, "PUT", "/api/columns", `{"owner":"scout-3","visible":[]}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decodeAs[columnsResponse](t, rr).Visible)
	})
}

func TestColumnsPresetHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	t.Run("minimum preset", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/columns/preset",
			`{"owner":"scout-1","preset":"minimum"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decodeAs[columnsResponse](t, rr)
		assert.Equal(t, resp.Minimum, resp.Visible)

		reload := decodeAs[columnsResponse](t, doRequest(t, server, "GET", "/api/columns?owner=scout-1", ""))
		assert.Equal(t, resp.Minimum, reload.Visible, "presets persist")
	})

	t.Run("all preset restores everything", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/columns/preset",
			`{"owner":"scout-1","preset":"all"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, prefs.Columns(), decodeAs[columnsResponse](t, rr).Visible)
	})

	t.Run("defaults preset", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/columns/preset",
			`{"owner":"scout-1","preset":"defaults"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, prefs.DefaultColumns().Visible(), decodeAs[columnsResponse](t, rr).Visible)
	})

	t.Run("unknown preset", func(t *testing.T) {
		rr := doRequest(t, server, "POST", "/api/columns/preset",
			`{"owner":"scout-1","preset":"everything"}`)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		resp := decodeAs[errorResponse](t, rr)
		assert.Equal(t, "unknown_preset", resp.Code)
		assert.Contains(t, resp.Details, "presets")
	})
}
