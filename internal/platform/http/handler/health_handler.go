// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// ReadinessChecker は参照データが利用可能かどうかを報告します。
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz・/health エンドポイントを生成します。
// 参照データが未ロードの間は 503 を返します。HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		err := checker.Ready(ctx)

		status := http.StatusOK
		if err != nil {
			slog.Warn("health check: not ready", "error", err)
			status = http.StatusServiceUnavailable
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if err != nil {
			c.JSON(status, gin.H{"status": "unhealthy", "data_loaded": false, "message": "数据未加载"})
			return
		}
		c.JSON(status, gin.H{"status": "healthy", "data_loaded": true})
	}
}
