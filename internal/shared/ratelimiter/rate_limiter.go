// Package ratelimiter はプロセス単位の固定ウィンドウ方式レートリミッターを提供します。
package ratelimiter

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter は操作を許可するかどうかを判定します。
type Limiter interface {
	Allow() bool
}

// RateLimiterは、interval ごとに limit 回まで操作を許可します。
// 複数のゴルーチンから同時に呼び出せます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return newRateLimiter(limit, interval, time.Now)
}

func newRateLimiter(limit int, interval time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: now(),
		now:       now,
	}
}

// Allowはレートリミットの上限に達していなければカウントを進めて true を返します。
// 上限に達している場合は待機せずに false を返します。
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.count >= rl.limit {
		return false
	}
	rl.count++
	return true
}

// Middleware は上限を超えたリクエストを 429 で拒否する Gin ミドルウェアを返します。
func Middleware(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
