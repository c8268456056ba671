package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/page"
)

func analysisFor(url string, score int) Analysis {
	return Analysis{
		Extraction: page.New(url),
		Report:     audit.Report{URL: url, Score: score, CategoryScores: map[audit.Category]int{audit.CategoryTitle: score}},
	}
}

func newMemoryCache(t *testing.T, ttl time.Duration, size int) (*MemoryCache, *time.Time) {
	t.Helper()
	c := NewMemoryCache(ttl, size)
	t.Cleanup(func() { c.Close() })
	clock := fixedNow
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestCacheKeyIsStableHex(t *testing.T) {
	key := cacheKey("https://example.com/")
	assert.Len(t, key, 32)
	assert.Equal(t, key, cacheKey("https://example.com/"))
	assert.NotEqual(t, key, cacheKey("https://example.com"))
}

func TestMemoryCacheExpiry(t *testing.T) {
	c, clock := newMemoryCache(t, time.Minute, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", analysisFor("https://example.com/", 90)))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 90, got.Report.Score)

	*clock = clock.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)

	c.cleanup()
	n, _ := c.Len(ctx)
	assert.Zero(t, n)
}

func TestMemoryCacheEvictsOldestOverLimit(t *testing.T) {
	c, clock := newMemoryCache(t, time.Hour, 2)
	ctx := context.Background()

	for i := range 3 {
		*clock = clock.Add(time.Second)
		require.NoError(t, c.Set(ctx, fmt.Sprint(i), analysisFor("https://example.com/", i)))
	}

	n, _ := c.Len(ctx)
	assert.Equal(t, 2, n)
	_, ok, _ := c.Get(ctx, "0")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok, _ = c.Get(ctx, "2")
	assert.True(t, ok)

	c.SetMaxSize(1)
	n, _ = c.Len(ctx)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.MaxSize())
}

func TestMemoryCacheSetTTLDropsStaleEntries(t *testing.T) {
	c, clock := newMemoryCache(t, time.Hour, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "old", analysisFor("https://example.com/old", 1)))
	*clock = clock.Add(10 * time.Minute)
	require.NoError(t, c.Set(ctx, "new", analysisFor("https://example.com/new", 2)))

	c.SetTTL(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, c.TTL())

	n, _ := c.Len(ctx)
	assert.Equal(t, 1, n)
	_, ok, _ := c.Get(ctx, "new")
	assert.True(t, ok)
}

func TestMemoryCacheClear(t *testing.T) {
	c, _ := newMemoryCache(t, time.Hour, 10)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", analysisFor("https://example.com/", 1)))

	require.NoError(t, c.Clear(ctx))
	n, _ := c.Len(ctx)
	assert.Zero(t, n)
}

func TestMemoryCacheDefaults(t *testing.T) {
	c := NewMemoryCache(0, -1)
	defer c.Close()
	assert.Equal(t, DefaultCacheTTL, c.TTL())
	assert.Equal(t, DefaultMaxCacheSize, c.MaxSize())
	assert.NoError(t, c.Close())
}

// TestRedisCache_Integration requires a running Redis and skips otherwise.
func TestRedisCache_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Skipping Redis integration test: redis not available")
	}

	prefix := "seoaudit-test:" + uuid.NewString() + ":"
	c := NewRedisCache(client, prefix, time.Minute)
	defer c.Close()
	defer c.Clear(ctx)

	assert.Equal(t, "redis", c.Name())

	_, ok, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	want := analysisFor("https://example.com/", 77)
	require.NoError(t, c.Set(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Report, got.Report)
	assert.Equal(t, want.Extraction.URL, got.Extraction.URL)

	ttl, err := client.TTL(ctx, prefix+"k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, c.Clear(ctx))
	n, err = c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCacheDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	c := NewRedisCache(client, "", 0)
	defer c.Close()

	assert.Equal(t, DefaultCacheTTL, c.TTL())
	assert.Equal(t, DefaultRedisPrefix, c.prefix)

	c.SetTTL(-time.Second)
	assert.Equal(t, DefaultCacheTTL, c.TTL())
	c.SetTTL(time.Hour)
	assert.Equal(t, time.Hour, c.TTL())
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-redis-url", "", time.Minute)
	assert.ErrorContains(t, err, "parse redis url")
}
