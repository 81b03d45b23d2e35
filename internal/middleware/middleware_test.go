package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/apperr"
	"github.com/iliyamo/hotel-room-reservation/internal/config"
	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

type stubAuth map[string]utils.Identity

func (s stubAuth) Authenticate(_ context.Context, raw string) (utils.Identity, error) {
	id, ok := s[raw]
	if !ok {
		return utils.Identity{}, apperr.New(apperr.KindAuth, "token_invalid", "invalid token")
	}
	return id, nil
}

func serve(e *echo.Echo, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	auth := stubAuth{
		"user-token":  {UserID: 7, Role: "USER"},
		"admin-token": {UserID: 1, Role: "ADMIN"},
	}
	e := echo.New()
	g := e.Group("", JWTAuth(auth))
	g.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		require.Equal(t, c.Get(CtxUserID), id.UserID)
		return c.String(http.StatusOK, id.Role)
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireRole("ADMIN"))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic user-token", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"user ok", "/me", "Bearer user-token", http.StatusOK},
		{"lowercase scheme", "/me", "bearer user-token", http.StatusOK},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hdr := map[string]string{}
			if tc.header != "" {
				hdr[echo.HeaderAuthorization] = tc.header
			}
			rec := serve(e, http.MethodGet, tc.path, hdr)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.want >= 400 {
				require.Contains(t, rec.Body.String(), `"statusCode"`)
			}
		})
	}
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/rooms/all", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/rooms/all", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(e, http.MethodGet, "/rooms/all", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, nil))
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", nil).Code)
	}
}

func TestRedisCacheHitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache:rooms",
	}
	var calls atomic.Int32
	e := echo.New()
	e.GET("/rooms/all", func(c echo.Context) error {
		calls.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"statusCode": 200})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, http.MethodGet, "/rooms/all", nil)
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/rooms/all", nil)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	require.EqualValues(t, 1, calls.Load())

	require.NoError(t, InvalidateCache(context.Background(), rdb, cfg.Prefix))
	third := serve(e, http.MethodGet, "/rooms/all", nil)
	require.Equal(t, "MISS", third.Header().Get("X-Cache"))
	require.EqualValues(t, 2, calls.Load())
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{http.MethodGet: true},
		TTL:     time.Minute,
		Prefix:  "cache:rooms",
	}
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, echo.Map{"statusCode": 500})
	}, NewRedisCache(cfg, rdb))

	serve(e, http.MethodGet, "/boom", nil)
	require.Empty(t, mr.Keys())
}
