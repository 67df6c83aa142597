// Package router はHTTPルーティングを組み立てます。
package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bazi_backend/internal/app/config"
	bazihandler "bazi_backend/internal/feature/bazi/transport/handler"
	"bazi_backend/internal/feature/bazi/transport/http/dto"
	"bazi_backend/internal/platform/http/handler"
	jwtmw "bazi_backend/internal/platform/jwt"
	"bazi_backend/internal/shared/ratelimiter"
)

func NewRouter(cfg config.Config, bazi *bazihandler.BaziHandler, ready handler.ReadinessChecker) (*gin.Engine, error) {
	// カスタムバリデーション（birthtime）を登録
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	r := gin.Default()

	// 認証不要
	// サービス説明
	r.GET("/", handler.Index)
	// 導通確認用（データ読み込み完了前は503）
	health := handler.Health(ready)
	for _, path := range []string{"/healthz", "/health"} {
		r.GET(path, health)
		r.HEAD(path, health)
		r.OPTIONS(path, health)
	}

	// 命式計算
	// RATE_LIMIT_PER_MINUTE・JWT_SECRET が設定されている場合のみミドルウェアを適用
	var mws []gin.HandlerFunc
	if cfg.RateLimitPerMinute > 0 {
		mws = append(mws, ratelimiter.Middleware(ratelimiter.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)))
	}
	if cfg.JWTSecret != "" {
		mws = append(mws, jwtmw.AuthRequired(cfg.JWTSecret))
	}
	r.POST("/bazi", append(mws, bazi.Compute)...)

	return r, nil
}
