// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"bazi_backend/internal/app/config"
	"bazi_backend/internal/feature/bazi/adapters"
	"bazi_backend/internal/feature/bazi/adapters/csvsource"
	"bazi_backend/internal/feature/bazi/usecase"
	"bazi_backend/internal/platform/cache"
	"bazi_backend/internal/platform/db"
)

// NewCalendarRepository creates the calendar provider selected by CALENDAR_SOURCE.
//
//   - csv: the CSV file is loaded into memory in the background; until it finishes
//     the provider reports ErrProviderUnavailable.
//   - db: calendar_days is read through gorm, with a Redis read-through cache when rdb is non-nil.
//
// The returned cleanup releases the database connection, if any.
func NewCalendarRepository(ctx context.Context, cfg config.Config, rdb *redis.Client) (*cache.CachingCalendarRepository, func(), error) {
	if cfg.CalendarSource != config.SourceDB {
		src := csvsource.File{Path: cfg.CalendarCSVPath, Encoding: cfg.CalendarCSVEncoding}
		mem := LoadMemoryCalendar(ctx, src)
		// In-process data gains nothing from a network cache.
		return cache.NewCachingCalendarRepository(nil, cfg.CalendarCacheTTL, mem, ""), func() {}, nil
	}

	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Warn("failed to close database", "error", err)
			}
		}
	}
	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, gdb); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	repo := adapters.NewCalendarRepository(gdb)
	return cache.NewCachingCalendarRepository(rdb, cfg.CalendarCacheTTL, repo, ""), cleanup, nil
}

const (
	loadRetryBase = time.Second
	loadRetryMax  = time.Minute
)

// LoadMemoryCalendar returns an empty MemoryCalendar and fills it from src in a background goroutine.
// A failed read is retried with exponential backoff until it succeeds or ctx is cancelled.
func LoadMemoryCalendar(ctx context.Context, src usecase.CalendarSource) *adapters.MemoryCalendar {
	return loadMemoryCalendar(ctx, src, loadRetryBase, loadRetryMax)
}

func loadMemoryCalendar(ctx context.Context, src usecase.CalendarSource, base, maxWait time.Duration) *adapters.MemoryCalendar {
	cal := adapters.NewMemoryCalendar()
	go func() {
		start := time.Now()
		wait := base
		for attempt := 1; ; attempt++ {
			slog.Info("loading calendar data", "attempt", attempt)
			days, err := src.ReadCalendar(ctx)
			if err == nil {
				cal.Replace(days)
				slog.Info("calendar data loaded", "rows", len(days), "elapsed", time.Since(start))
				return
			}
			slog.Error("calendar data load failed, retrying", "error", err, "attempt", attempt, "retry_in", wait)

			select {
			case <-ctx.Done():
				slog.Warn("calendar data load cancelled", "error", ctx.Err())
				return
			case <-time.After(wait):
			}
			wait = min(wait*2, maxWait)
		}
	}()
	return cal
}
