package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-pantry/internal/pkg/common"
)

// Deduplicator 在時間窗內擋下完全相同的 POST 請求（例如重複點擊「分析」）
type Deduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	requests map[string]time.Time
	now      func() time.Time
}

// NewDeduplicator 創建去重器
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
	}
}

// seen 記錄指紋並回傳是否在時間窗內重複；順便清掉過期項目
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now

	if len(d.requests) > 1024 {
		for k, t := range d.requests {
			if now.Sub(t) > 10*d.window {
				delete(d.requests, k)
			}
		}
	}
	return false
}

// Middleware 請求去重中間件
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Code:    "PAYLOAD_TOO_LARGE",
					Message: "請求內容過大",
				})
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		// 生成請求指紋
		fingerprint := c.GetHeader(UserIDHeader) + ":" + c.Request.Method + ":" + c.Request.URL.RequestURI()
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "重複的請求",
			})
			return
		}

		c.Next()
	}
}
