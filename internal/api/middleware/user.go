package middleware

import (
	"net/http"
	"strings"

	"recipe-pantry/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader 呼叫者身分（驗證由上游負責）
	UserIDHeader = "X-User-ID"
	// UserIDKey gin.Context 中的使用者 ID
	UserIDKey = "user_id"

	maxUserIDLength = 64
)

// RequireUser 要求 X-User-ID，缺少時回 401
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" || len(userID) > maxUserIDLength {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{
				Code:    common.ErrCodeUnauthorized,
				Message: common.ErrUnauthorized.Message,
				Details: "missing or invalid " + UserIDHeader + " header",
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID 取得已驗證的使用者 ID
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
