package middleware

import (
	"sync"
	"time"

	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// LoginRateLimiter 登录接口限流器，按客户端IP做令牌桶
// 用于抑制口令暴力尝试
type LoginRateLimiter struct {
	ratePerSecond float64
	burst         float64

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewLoginRateLimiter 创建限流器
func NewLoginRateLimiter(ratePerSecond float64, burst int) *LoginRateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	rl := &LoginRateLimiter{
		ratePerSecond: ratePerSecond,
		burst:         float64(burst),
		buckets:       make(map[string]*tokenBucket),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Allow 判断该客户端是否放行
func (rl *LoginRateLimiter) Allow(clientIP string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[clientIP]
	if !ok {
		rl.buckets[clientIP] = &tokenBucket{tokens: rl.burst - 1, lastUpdate: now}
		return true
	}

	b.tokens += now.Sub(b.lastUpdate).Seconds() * rl.ratePerSecond
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastUpdate = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware 返回 gin 中间件
func (rl *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			common.AbortWithError(c, common.CodeInvalidRequest, "请求过于频繁，请稍后重试")
			return
		}
		c.Next()
	}
}

func (rl *LoginRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-interval)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if b.lastUpdate.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
