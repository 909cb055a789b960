// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/prices/domain/entity"
	"portfolio_backend/internal/feature/prices/usecase"
	"portfolio_backend/internal/shared/caldate"
)

const defaultTTL = 5 * time.Minute

// TTLFunc returns the expiry for an entry written now.
type TTLFunc func() time.Duration

// FixedTTL returns a TTLFunc that always yields d.
func FixedTTL(d time.Duration) TTLFunc {
	return func() time.Duration { return d }
}

// CachingPriceRepository decorates a PriceRepository with a Redis read-through
// cache for single-point lookups. Range queries go straight to the store.
type CachingPriceRepository struct {
	inner     usecase.PriceRepository
	rdb       *redis.Client
	ttl       TTLFunc
	namespace string
}

var _ usecase.PriceRepository = (*CachingPriceRepository)(nil)

// NewCachingPriceRepository decorates inner with Redis caching. A nil rdb
// disables caching. A nil ttl defaults to 5 minutes, an empty namespace to "prices".
func NewCachingPriceRepository(rdb *redis.Client, ttl TTLFunc, inner usecase.PriceRepository, namespace string) *CachingPriceRepository {
	if ttl == nil {
		ttl = FixedTTL(defaultTTL)
	}
	if namespace == "" {
		namespace = "prices"
	}
	return &CachingPriceRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Upsert writes through to the store and then drops the cached entry.
func (c *CachingPriceRepository) Upsert(ctx context.Context, p entity.PricePoint) error {
	if err := c.inner.Upsert(ctx, p); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// best effort: a stale entry expires with its TTL
	_ = c.rdb.Del(ctx, c.cacheKey(p.AssetID, p.Date)).Err()
	return nil
}

// Find checks Redis first and falls back to the store. Misses are not cached.
func (c *CachingPriceRepository) Find(ctx context.Context, assetID uint, date caldate.Date) (entity.PricePoint, bool, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, assetID, date)
	}

	key := c.cacheKey(assetID, date)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var p entity.PricePoint
		if err := json.Unmarshal(b, &p); err == nil {
			return p, true, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	p, ok, err := c.inner.Find(ctx, assetID, date)
	if err != nil || !ok {
		return p, ok, err
	}

	// 3) Store in cache (best effort)
	if ttl := c.ttl(); ttl > 0 {
		if b, err := json.Marshal(p); err == nil {
			_ = c.rdb.Set(ctx, key, b, ttl).Err()
		}
	}
	return p, true, nil
}

func (c *CachingPriceRepository) ListRange(ctx context.Context, assetID uint, start, end caldate.Date) ([]entity.PricePoint, error) {
	return c.inner.ListRange(ctx, assetID, start, end)
}

// cacheKey generates a cache key for one (asset, day).
func (c *CachingPriceRepository) cacheKey(assetID uint, date caldate.Date) string {
	return fmt.Sprintf("%s:%d:%s", safe(c.namespace), assetID, date)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
