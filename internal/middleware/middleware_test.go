package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/config"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func run(t *testing.T, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, h(echo.New().NewContext(req, rec)))
	return rec
}

func TestAllowAnyOrigin(t *testing.T) {
	rec := run(t, AllowAnyOrigin()(ok), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestRedisMiddlewareDisabledWithoutClient(t *testing.T) {
	mws := map[string]echo.MiddlewareFunc{
		"ratelimit": NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
		"cache":     NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil),
	}
	for name, mw := range mws {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				rec := run(t, mw(ok), httptest.NewRequest(http.MethodGet, "/api/hello", nil))
				require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
				assert.Equal(t, "ok", rec.Body.String())
				assert.Empty(t, rec.Header().Get("X-Cache"))
				assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}

func TestRateKey(t *testing.T) {
	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:192.0.2.1"},
		{"route", "rl:route:GET /api/random"},
		{"ip_route", "rl:ip:192.0.2.1:route:GET /api/random"},
		{"", "rl:ip:192.0.2.1:route:GET /api/random"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/random?x=1", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		c := echo.New().NewContext(req, httptest.NewRecorder())
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
		assert.Equal(t, tc.want, rateKey(cfg, c), "strategy %q", tc.strategy)
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"text/html; charset=utf-8"}}
	body := []byte("<html>app</html>")
	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/html; charset=utf-8", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok, "truncated payload decoded")
	bad := append([]byte{}, bs...)
	bad[7] = 0xff // header length past the end
	_, _, _, ok = decodePayload(bad)
	assert.False(t, ok, "payload with bad header length decoded")
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.EqualValues(t, 6, cw.size)
	assert.Equal(t, "abcdef", rec.Body.String())
}

func sign(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestOperatorAuth(t *testing.T) {
	const secret = "test-secret"
	exp := time.Now().Add(time.Hour).Unix()
	h := JWTAuth(secret)(RequireRole("OPERATOR")(ok))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, "other", jwt.MapClaims{"sub": "a", "role": "OPERATOR", "exp": exp}, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "a", "role": "OPERATOR", "exp": time.Now().Add(-time.Hour).Unix()}, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "a", "role": "OPERATOR", "exp": exp}, jwt.SigningMethodHS512), http.StatusUnauthorized},
		{"wrong role", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "a", "role": "VIEWER", "exp": exp}, jwt.SigningMethodHS256), http.StatusForbidden},
		{"no role", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "a", "exp": exp}, jwt.SigningMethodHS256), http.StatusForbidden},
		{"operator", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "a", "role": "OPERATOR", "exp": exp}, jwt.SigningMethodHS256), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/deployments", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := run(t, h, req)
			assert.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
		})
	}
}
