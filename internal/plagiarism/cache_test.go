package plagiarism

import (
	"context"
	"testing"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	name    string
	entries map[string]*Comparison
	sets    int
}

func newMapCache(name string) *mapCache {
	return &mapCache{name: name, entries: make(map[string]*Comparison)}
}

func (c *mapCache) Name() string { return c.name }

func (c *mapCache) Get(_ context.Context, key string) (*Comparison, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, key string, comparison *Comparison) {
	c.sets++
	c.entries[key] = comparison
}

func sampleComparison() *Comparison {
	return &Comparison{
		Result:       &alignment.Result{Similarity: 0.5},
		FirstTokens:  2,
		SecondTokens: 2,
		Risk:         RiskSuspicious,
	}
}

func TestLRUCacheExpires(t *testing.T) {
	cache, err := NewLRUCache(4, time.Millisecond)
	require.NoError(t, err)

	cache.Set(context.Background(), "k", sampleComparison())
	_, ok := cache.Get(context.Background(), "k")
	assert.True(t, ok)

	time.Sleep(5 * time.Millisecond)
	_, ok = cache.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCacheEvicts(t *testing.T) {
	cache, err := NewLRUCache(2, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	cache.Set(ctx, "a", sampleComparison())
	cache.Set(ctx, "b", sampleComparison())
	cache.Set(ctx, "c", sampleComparison())

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(ctx, "c")
	assert.True(t, ok)
}

func TestLRUCacheRejectsBadSize(t *testing.T) {
	_, err := NewLRUCache(0, time.Minute)
	assert.Error(t, err)
}

func TestTieredCacheBackfills(t *testing.T) {
	fast := newMapCache("fast")
	slow := newMapCache("slow")
	tiered := NewTieredCache(fast, slow)
	ctx := context.Background()

	slow.entries["k"] = sampleComparison()

	got, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, RiskSuspicious, got.Risk)
	assert.Contains(t, fast.entries, "k", "hit in the slow tier is copied to the fast tier")

	_, ok = tiered.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestTieredCacheSetsEveryTier(t *testing.T) {
	fast := newMapCache("fast")
	slow := newMapCache("slow")
	tiered := NewTieredCache(fast, slow)

	tiered.Set(context.Background(), "k", sampleComparison())

	assert.Equal(t, 1, fast.sets)
	assert.Equal(t, 1, slow.sets)
}
