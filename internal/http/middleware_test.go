package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	t.Run("assigns an id when none is sent", func(t *testing.T) {
		rr := doRequest(t, server, "GET", "/health", "")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("echoes an inbound id", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "req-274")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, "req-274", rr.Header().Get("X-Request-ID"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	server.Router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rr := doRequest(t, server, "GET", "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	resp := decodeAs[errorResponse](t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, "internal_error", resp.Code)
}

func TestVerboseParamRestoresLogLevel(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	original := log.GetLevel()
	defer log.SetLevel(original)
	log.SetLevel(log.WarnLevel)

	doRequest(t, server, "GET", "/api/health?verbose=true", "")
	assert.Equal(t, log.WarnLevel, log.GetLevel(), "verbose logging must not leak past the request")
}
