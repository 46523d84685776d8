package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryKey(t *testing.T) {
	now := time.Date(2026, time.July, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "debt-summary:42:2026-07", SummaryKey(42, now))

	// Keys are computed in UTC
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "debt-summary:42:2026-08", SummaryKey(42, time.Date(2026, time.July, 31, 22, 0, 0, 0, est)))
}

func TestLRU_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRU[string](10, time.Minute)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", "one"))
	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	require.NoError(t, c.Set(ctx, "a", "uno"))
	v, _, _ = c.Get(ctx, "a")
	assert.Equal(t, "uno", v)
	assert.Equal(t, 1, c.Size())

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU[int](2, time.Minute)

	// GIVEN: A full cache where "a" was read after "b" was written
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Get(ctx, "a")

	// WHEN: A third key arrives
	c.Set(ctx, "c", 3)

	// THEN: "b" is evicted
	_, okA, _ := c.Get(ctx, "a")
	_, okB, _ := c.Get(ctx, "b")
	_, okC, _ := c.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.Equal(t, 2, c.Size())
}

func TestLRU_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[int](10, 5*time.Minute)
	c.now = func() time.Time { return clock }

	c.Set(ctx, "fresh", 1)
	c.Set(ctx, "stale", 2)
	clock = clock.Add(4 * time.Minute)
	c.Set(ctx, "fresh", 3) // rewrite restarts the TTL

	clock = clock.Add(2 * time.Minute)
	_, ok, _ := c.Get(ctx, "stale")
	assert.False(t, ok)

	v, ok, _ := c.Get(ctx, "fresh")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	clock = clock.Add(10 * time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestRedis_UnreachableServerReportsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := NewRedis[int]("127.0.0.1:1", time.Minute)
	defer c.Close()

	_, ok, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Ping(ctx))
}

func TestRedis_DecodeValue(t *testing.T) {
	v, err := decodeValue[map[string]int]("k", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, v["a"])

	// GIVEN: Bytes written by another schema version
	_, err = decodeValue[map[string]int]("debt-summary:1:2026-03", []byte(`{"a":"one"}`))

	// THEN: The failure surfaces as ErrCorruptValue naming the key
	require.ErrorIs(t, err, ErrCorruptValue)
	assert.Contains(t, err.Error(), "debt-summary:1:2026-03")
}
