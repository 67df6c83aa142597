// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bazi_backend/internal/feature/bazi/domain/entity"
	"bazi_backend/internal/feature/bazi/usecase"
)

const (
	defaultTTL       = 24 * time.Hour
	defaultNamespace = "calendar"
	scanCount        = 200
)

// ReadyChecker is implemented by providers that can report whether their data is usable.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}

// CachingCalendarRepository decorates a CalendarRepository with Redis caching.
// The reference table is effectively immutable between ingests, so entries live
// for a long TTL and are dropped explicitly by Invalidate.
type CachingCalendarRepository struct {
	inner     usecase.CalendarRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CalendarRepository = (*CachingCalendarRepository)(nil)

// NewCachingCalendarRepository decorates a CalendarRepository with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "calendar".
// A nil rdb disables caching.
func NewCachingCalendarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CalendarRepository, namespace string) *CachingCalendarRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingCalendarRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// SolarTerms returns the major solar terms for the year range, checking cache first.
func (c *CachingCalendarRepository) SolarTerms(ctx context.Context, fromYear, toYear int) ([]entity.SolarTermEvent, error) {
	key := c.termsKey(fromYear, toYear)
	return readThrough(ctx, c, key, func() ([]entity.SolarTermEvent, error) {
		return c.inner.SolarTerms(ctx, fromYear, toYear)
	})
}

// DayRecord returns the reference row for the date, checking cache first.
// Errors (including missing data) are never cached.
func (c *CachingCalendarRepository) DayRecord(ctx context.Context, date time.Time) (entity.DayRecord, error) {
	key := c.dayKey(date)
	return readThrough(ctx, c, key, func() (entity.DayRecord, error) {
		return c.inner.DayRecord(ctx, date)
	})
}

// Ready delegates to the inner repository when it supports readiness checks.
func (c *CachingCalendarRepository) Ready(ctx context.Context) error {
	if rc, ok := c.inner.(ReadyChecker); ok {
		return rc.Ready(ctx)
	}
	return nil
}

// Invalidate deletes every cache entry in the namespace. It is called after the
// reference table has been re-ingested.
func (c *CachingCalendarRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, safe(c.namespace)+":*")
}

func readThrough[T any](ctx context.Context, c *CachingCalendarRepository, key string, load func() (T, error)) (T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the inner repository
	out, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// termsKey generates the cache key for a solar term range query.
func (c *CachingCalendarRepository) termsKey(fromYear, toYear int) string {
	return fmt.Sprintf("%s:terms:%d:%d", safe(c.namespace), fromYear, toYear)
}

// dayKey generates the cache key for a day record.
func (c *CachingCalendarRepository) dayKey(date time.Time) string {
	return fmt.Sprintf("%s:day:%s", safe(c.namespace), entity.DateKey(date))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCalendarRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
