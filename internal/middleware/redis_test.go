package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		Prefix:         "rl",
		KeyStrategy:    "ip_route",
	}
	e := echo.New()
	e.GET("/api/hello", ok, NewTokenBucket(cfg, rdb))

	for i, wantRemaining := range []string{"1", "0"} {
		rec := serve(e, http.MethodGet, "/api/hello")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, wantRemaining, rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := serve(e, http.MethodGet, "/api/hello")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.NotEqual(t, "0", rec.Header().Get("Retry-After"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests", body.Error)
	assert.Positive(t, body.RetryAfter)
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour}
	e := echo.New()
	e.GET("/api/hello", ok, NewTokenBucket(cfg, rdb))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/hello").Code)
	}
}

func newCachedEcho(t *testing.T, rdb *redis.Client, h echo.HandlerFunc) *echo.Echo {
	t.Helper()
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true, http.MethodHead: true},
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
	e := echo.New()
	e.Use(AllowAnyOrigin())
	e.GET("/*", h, NewRedisCache(cfg, rdb))
	return e
}

func TestRedisCacheHit(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := newCachedEcho(t, rdb, func(c echo.Context) error {
		calls++
		c.Response().Header().Add(echo.HeaderVary, "Accept")
		c.Response().Header().Add(echo.HeaderVary, "Accept-Encoding")
		return c.HTML(http.StatusOK, "<html>app</html>")
	})

	miss := serve(e, http.MethodGet, "/index.html")
	require.Equal(t, http.StatusOK, miss.Code)
	assert.Equal(t, "MISS", miss.Header().Get("X-Cache"))

	hit := serve(e, http.MethodGet, "/index.html")
	require.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls, "handler ran on a hit")
	assert.Equal(t, miss.Body.String(), hit.Body.String())
	assert.Equal(t, []string{"*"}, hit.Header().Values(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, []string{echo.MIMETextHTMLCharsetUTF8}, hit.Header().Values(echo.HeaderContentType))
	assert.Equal(t, []string{"Accept", "Accept-Encoding"}, hit.Header().Values(echo.HeaderVary))
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	calls := 0
	e := newCachedEcho(t, rdb, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, mr.Keys())
}

func TestRestoreHeaderReplacesOuterValues(t *testing.T) {
	dst := http.Header{}
	dst.Set(echo.HeaderAccessControlAllowOrigin, "*")
	dst.Set(echo.HeaderContentType, "text/plain")

	stored := http.Header{
		echo.HeaderAccessControlAllowOrigin: {"*"},
		echo.HeaderContentType:              {"text/css"},
		echo.HeaderContentLength:            {"12"},
		"X-Cache":                           {"MISS"},
	}
	restoreHeader(dst, stored)

	assert.Equal(t, []string{"*"}, dst.Values(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, []string{"text/css"}, dst.Values(echo.HeaderContentType))
	assert.Empty(t, dst.Values(echo.HeaderContentLength))
	assert.Empty(t, dst.Values("X-Cache"))
}
