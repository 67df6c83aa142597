// Package config はサーバーと取込CLIの環境変数設定を読み込みます。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	SourceCSV = "csv"
	SourceDB  = "db"
)

// Config はプロセス全体の設定です。DB接続の設定は platform/db が別に読み込みます。
type Config struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// CalendarSource は参照データの提供元（csv: 起動時にCSVをメモリへ読み込む / db: calendar_days テーブル）です。
	CalendarSource      string        `envconfig:"CALENDAR_SOURCE" default:"csv"`
	CalendarCSVPath     string        `envconfig:"CALENDAR_CSV_PATH" default:"data.csv"`
	CalendarCSVEncoding string        `envconfig:"CALENDAR_CSV_ENCODING" default:"gbk"`
	CalendarCacheTTL    time.Duration `envconfig:"CALENDAR_CACHE_TTL" default:"24h"`
	// RunMigrations が true の場合、db モードの起動時にマイグレーションを適用します。
	RunMigrations bool `envconfig:"RUN_MIGRATIONS" default:"false"`

	// RateLimitPerMinute が0の場合は制限しません。
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"0"`
	// JWTSecret が設定されている場合のみ /bazi にトークンを要求します。
	JWTSecret string `envconfig:"JWT_SECRET"`

	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

// Load は .env（存在すれば）と環境変数から設定を読み込みます。
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.CalendarSource = strings.ToLower(strings.TrimSpace(cfg.CalendarSource))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CalendarSource {
	case SourceCSV, SourceDB:
	default:
		return fmt.Errorf("CALENDAR_SOURCE must be %q or %q, got %q", SourceCSV, SourceDB, c.CalendarSource)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	return nil
}

// SlogLevel は LOG_LEVEL を slog.Level に変換します。不明な値は info です。
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// RedisAddr は REDIS_HOST が未設定なら空文字を返します。
func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}
