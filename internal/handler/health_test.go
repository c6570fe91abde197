package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/marquee/marquee-go/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rc := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = rc.Close() })

	check := func(c *cache.Cache) HealthResponse {
		rec := httptest.NewRecorder()
		healthHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return decode[HealthResponse](t, rec)
	}

	assert.Equal(t, HealthResponse{Status: "ok", Cache: "disabled"}, check(nil))
	assert.Equal(t, HealthResponse{Status: "ok", Cache: "ok"}, check(rc))

	mr.Close()
	assert.Equal(t, HealthResponse{Status: "ok", Cache: "unavailable"}, check(rc))
}

func TestHealthRoute(t *testing.T) {
	h := newTestRouter(t, nil)
	rec := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disabled", decode[HealthResponse](t, rec).Cache)
}
