package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T) Limiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:login:"}
}

func TestAllowWithinLimit(t *testing.T) {
	limiter := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := limiter.Allow(ctx, "10.0.0.1", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "10.0.0.1", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	limiter := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, _, err := limiter.Allow(ctx, "10.0.0.1", time.Minute, 3)
		require.NoError(t, err)
	}
	allowed, _, _, err := limiter.Allow(ctx, "10.0.0.2", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAllowDisabledWithoutClient(t *testing.T) {
	allowed, _, _, err := Limiter{}.Allow(context.Background(), "k", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestMiddlewareBlocksWith429(t *testing.T) {
	limiter := newLimiter(t)
	handler := Handler{
		Limiter: limiter,
		Config:  Config{Key: KeyByClientIP, Window: time.Minute, Max: 2},
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := handler.Middleware(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "192.168.1.5:40000"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "192.168.1.5:40001"
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
}

func TestKeyByClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "172.16.0.9:51234"
	require.Equal(t, "172.16.0.9", KeyByClientIP(req))

	req.RemoteAddr = "bad-addr"
	require.Equal(t, "bad-addr", KeyByClientIP(req))
}
