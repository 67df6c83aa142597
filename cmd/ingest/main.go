package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"bazi_backend/internal/app/config"
	"bazi_backend/internal/feature/bazi/adapters"
	"bazi_backend/internal/feature/bazi/adapters/csvsource"
	"bazi_backend/internal/feature/bazi/usecase"
	"bazi_backend/internal/platform/cache"
	"bazi_backend/internal/platform/db"
	jwtmw "bazi_backend/internal/platform/jwt"
	infraredis "bazi_backend/internal/platform/redis"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "ingest",
		Usage: "Reference calendar data and API token tooling",
		Commands: []*cli.Command{
			migrateCommand(),
			csvCommand(),
			tokenCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations (calendar_days)",
		Action: func(ctx context.Context, c *cli.Command) error {
			gdb, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(gdb)
			return db.RunMigrations(ctx, gdb)
		},
	}
}

func csvCommand() *cli.Command {
	return &cli.Command{
		Name:  "csv",
		Usage: "Load the reference CSV (日期, 节气, 干支, hour columns) into calendar_days",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the reference CSV", Sources: cli.EnvVars("CALENDAR_CSV_PATH")},
			&cli.StringFlag{Name: "encoding", Value: "gbk", Usage: "gbk | gb18030 | utf-8", Sources: cli.EnvVars("CALENDAR_CSV_ENCODING")},
			&cli.IntFlag{Name: "batch-size", Value: 500, Usage: "rows per upsert"},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Minute, Usage: "overall ingest timeout"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
			defer cancel()

			gdb, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(gdb)
			if err := db.RunMigrations(ctx, gdb); err != nil {
				return err
			}

			repo := adapters.NewCalendarRepository(gdb)
			src := csvsource.File{Path: c.String("file"), Encoding: c.String("encoding")}
			uc := usecase.NewIngestUsecase(src, repo, c.Int("batch-size"))

			res, err := uc.Ingest(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("read=%d written=%d skipped=%d\n", res.Read, res.Written, res.Skipped)

			invalidateCache(ctx, repo)
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an API token for /bazi (requires JWT_SECRET)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client", Required: true, Usage: "client identifier stored in the sub claim"},
			&cli.DurationFlag{Name: "ttl", Value: 365 * 24 * time.Hour, Usage: "token lifetime"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := jwtmw.NewGenerator(cfg.JWTSecret, c.Duration("ttl")).GenerateToken(c.String("client"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func openDB() (*gorm.DB, error) {
	return db.OpenDB(db.LoadConfigFromEnv())
}

func closeDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		slog.Warn("failed to get database handle", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// invalidateCache は稼働中のサーバーが古いキャッシュを返さないよう Redis のエントリを削除します（ベストエフォート）。
func invalidateCache(ctx context.Context, repo usecase.CalendarRepository) {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("skip cache invalidation", "error", err)
		return
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil || rdb == nil {
		return
	}
	defer func() { _ = rdb.Close() }()

	if err := cache.NewCachingCalendarRepository(rdb, cfg.CalendarCacheTTL, repo, "").Invalidate(ctx); err != nil {
		slog.Warn("cache invalidation failed", "error", err)
		return
	}
	slog.Info("calendar cache invalidated")
}
