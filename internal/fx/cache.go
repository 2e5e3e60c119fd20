package fx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hostledger/internal/models"
)

// Cache stores rates for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error
}

// CachedProvider serves rates from a cache and refreshes expired ones from
// the wrapped provider. A rate that is neither cached nor fetchable is an
// error; nothing is defaulted.
type CachedProvider struct {
	next  RateProvider
	cache Cache
	ttl   time.Duration
}

// NewCachedProvider wraps next with cache, keeping fetched rates for ttl.
func NewCachedProvider(next RateProvider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

// CacheKey identifies a rate for one pair and calendar day.
func CacheKey(from, to string, asOf time.Time) string {
	return fmt.Sprintf("fx:%s:%s:%s", strings.ToUpper(from), strings.ToUpper(to), asOf.UTC().Format(time.DateOnly))
}

// GetRate returns the cached rate or fetches and caches a fresh one.
func (p *CachedProvider) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	key := CacheKey(from, to, asOf)

	rate, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		// Degraded mode: fall through to the provider.
		slog.Warn("Rate cache read failed", "key", key, "error", err)
	} else if ok {
		return rate, nil
	}

	rate, err = p.next.GetRate(ctx, from, to, asOf)
	if err != nil {
		if !errors.Is(err, models.ErrCurrencyConversionUnavailable) {
			err = fmt.Errorf("%w: %w", models.ErrCurrencyConversionUnavailable, err)
		}
		return decimal.Zero, err
	}

	if err := p.cache.Set(ctx, key, rate, p.ttl); err != nil {
		slog.Warn("Rate cache write failed", "key", key, "error", err)
	}
	slog.Debug("Rate fetched", "from", from, "to", to, "as_of", asOf.UTC().Format(time.DateOnly), "rate", rate.String())
	return rate, nil
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get returns the rate if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || !c.now().Before(item.expiresAt) {
		return decimal.Zero, false, nil
	}
	return item.rate, true, nil
}

// Set stores the rate until ttl elapses.
func (c *MemoryCache) Set(_ context.Context, key string, rate decimal.Decimal, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryItem{rate: rate, expiresAt: c.now().Add(ttl)}
	return nil
}

// RedisCache shares rates between processes through Redis.
type RedisCache struct {
	rdb redis.Cmdable
}

// NewRedisCache creates a cache backed by rdb.
func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get returns the rate stored under key, if any.
func (c *RedisCache) Get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read rate from redis: %w", err)
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("malformed cached rate %q: %w", val, err)
	}
	return rate, true, nil
}

// Set stores the rate with a Redis expiry of ttl.
func (c *RedisCache) Set(ctx context.Context, key string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate to redis: %w", err)
	}
	return nil
}
