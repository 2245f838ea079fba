package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensbook/booking-api/internal/config"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		TTL:          time.Minute,
		Prefix:       "cache-test",
		MaxBodyBytes: 1 << 20,
	}
}

// countingHandler answers with a fixed body and counts how often the
// underlying handler actually ran.
func countingHandler(calls *int) echo.HandlerFunc {
	return func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": []string{"jane"}})
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, h echo.HandlerFunc, method string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(h)(c))
	return rec
}

func TestRedisCache_NilRedisPassesThrough(t *testing.T) {
	calls := 0
	mw := NewRedisCache(cacheConfig(), nil)

	rec := doRequest(t, mw, countingHandler(&calls), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRedisCache_OnlyTouchesGet(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	mw := NewRedisCache(cacheConfig(), rdb)

	rec := doRequest(t, mw, countingHandler(&calls), http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_ServesRepeatGetFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	calls := 0
	mw := NewRedisCache(cacheConfig(), rdb)

	first := doRequest(t, mw, countingHandler(&calls), http.MethodGet)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	require.Equal(t, 1, calls)
	require.NotEmpty(t, mr.Keys())

	second := doRequest(t, mw, countingHandler(&calls), http.MethodGet)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls, "handler must not run on a cache hit")
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}
