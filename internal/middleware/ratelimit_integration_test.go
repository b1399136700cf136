//go:build integration

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/iliyamo/item-api/internal/config"
)

// sharedRedisURL points at the container started by TestMain.
var sharedRedisURL string

func TestMain(m *testing.M) {
	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7")
	if err != nil {
		panic("start redis container: " + err.Error())
	}
	sharedRedisURL, err = ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		panic("redis connection string: " + err.Error())
	}

	code := m.Run()
	_ = ctr.Terminate(ctx)
	os.Exit(code)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(sharedRedisURL)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	require.NoError(t, rdb.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func newLimitedServer(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/items", NewTokenBucket(cfg, rdb))
	g.GET("", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func get(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := newLimitedServer(cfg, setupRedis(t))

	first := get(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := get(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := get(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "2", third.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))

	retry, err := strconv.Atoi(third.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 60)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "rate limit exceeded", body["message"])
	assert.Equal(t, float64(retry), body["retry_after"])

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, get(e, "10.0.0.2").Code)
}

func TestTokenBucket_Refills(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: 200 * time.Millisecond,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := newLimitedServer(cfg, setupRedis(t))

	assert.Equal(t, http.StatusOK, get(e, "10.0.0.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "10.0.0.3").Code)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, http.StatusOK, get(e, "10.0.0.3").Code)
}
