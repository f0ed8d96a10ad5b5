package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"recipe-pantry/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter 每個用戶端一個令牌桶；閒置超過一個時間窗的桶會被清掉
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 創建新的限流器：每個 window 最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		idleTTL: window,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow 檢查是否允許請求；拒絕時回傳需要等待的時間
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.idleTTL
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// prune 閒置滿一個時間窗的桶已經補滿，刪掉與重建等價
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

// RateLimit 限流中間件；有 X-User-ID 時以使用者為單位，否則以 IP
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewRateLimiter(requests, window).Middleware()
}

// Middleware 以既有的限流器建立中間件
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(UserIDHeader)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, retryAfter := rl.Allow(key)
		if !allowed {
			common.LogInfo("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("retry_after", retryAfter),
			)

			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: common.ErrTooManyRequests.Message,
			})
			return
		}

		c.Next()
	}
}
