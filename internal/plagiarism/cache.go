package plagiarism

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/metrics"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const resultKeyPrefix = "alignment_result:"

// ResultCache stores finished comparisons by CacheKey
type ResultCache interface {
	Name() string
	Get(ctx context.Context, key string) (*Comparison, bool)
	Set(ctx context.Context, key string, c *Comparison)
}

// CacheKey identifies a comparison by everything that determines its result
func CacheKey(policy tokenizer.Policy, cfg alignment.Config, first, second string) string {
	h := sha256.New()
	writeField := func(s string) {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	writeField(policy.String())
	writeField(cfg.String())
	writeField(first)
	writeField(second)
	return hex.EncodeToString(h.Sum(nil))
}

type lruEntry struct {
	comparison *Comparison
	expiresAt  time.Time
}

// LRUCache is the in-process tier
type LRUCache struct {
	entries *lru.ARCCache
	ttl     time.Duration
}

func NewLRUCache(size int, ttl time.Duration) (*LRUCache, error) {
	entries, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &LRUCache{entries: entries, ttl: ttl}, nil
}

func (c *LRUCache) Name() string {
	return "memory"
}

func (c *LRUCache) Get(_ context.Context, key string) (*Comparison, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(lruEntry)
	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.comparison, true
}

func (c *LRUCache) Set(_ context.Context, key string, comparison *Comparison) {
	c.entries.Add(key, lruEntry{comparison: comparison, expiresAt: time.Now().Add(c.ttl)})
}

func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// RedisCache shares results between processes as JSON with a TTL
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Name() string {
	return "redis"
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Comparison, bool) {
	raw, err := c.rdb.Get(ctx, resultKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Failed to read cached result")
		}
		return nil, false
	}

	var comparison Comparison
	if err := json.Unmarshal(raw, &comparison); err != nil {
		log.Warn().Err(err).Msg("Dropping undecodable cached result")
		return nil, false
	}
	return &comparison, true
}

func (c *RedisCache) Set(ctx context.Context, key string, comparison *Comparison) {
	raw, err := json.Marshal(comparison)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode result for cache")
		return
	}
	if err := c.rdb.Set(ctx, resultKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to cache result in Redis")
	}
}

// TieredCache reads tiers in order and backfills the faster tiers on a hit
type TieredCache struct {
	tiers []ResultCache
}

func NewTieredCache(tiers ...ResultCache) *TieredCache {
	return &TieredCache{tiers: tiers}
}

func (c *TieredCache) Name() string {
	return "tiered"
}

func (c *TieredCache) Get(ctx context.Context, key string) (*Comparison, bool) {
	for i, tier := range c.tiers {
		comparison, ok := tier.Get(ctx, key)
		if !ok {
			continue
		}
		metrics.CacheHits.WithLabelValues(tier.Name()).Inc()
		for _, faster := range c.tiers[:i] {
			faster.Set(ctx, key, comparison)
		}
		return comparison, true
	}
	return nil, false
}

func (c *TieredCache) Set(ctx context.Context, key string, comparison *Comparison) {
	for _, tier := range c.tiers {
		tier.Set(ctx, key, comparison)
	}
}
