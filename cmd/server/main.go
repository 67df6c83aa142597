package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisv9 "github.com/redis/go-redis/v9"

	"bazi_backend/internal/app/config"
	"bazi_backend/internal/app/di"
	"bazi_backend/internal/app/router"
	bazihandler "bazi_backend/internal/feature/bazi/transport/handler"
	baziusecase "bazi_backend/internal/feature/bazi/usecase"
	infraredis "bazi_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis（db モードのキャッシュ用、未設定・接続失敗時はキャッシュなしで起動）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository（csv モードではバックグラウンドで読み込み開始）
	calendar, cleanup, err := di.NewCalendarRepository(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer cleanup()

	// Usecase / Handler
	profileUC := baziusecase.NewProfileUsecase(calendar)
	baziH := bazihandler.NewBaziHandler(profileUC)

	// ルータ生成
	r, err := router.NewRouter(cfg, baziH, calendar)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. /bazi is served without authentication.")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "calendar_source", cfg.CalendarSource)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
