package respond

import (
	"net/http"

	"recipe-pantry/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID；requestid 中間件未掛載時自行產生
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return common.GenerateUUID()
}

// Error 依錯誤類型回應對應的狀態碼與錯誤代碼
func Error(c *gin.Context, err error) {
	apiErr := common.ClassifyError(err)
	if apiErr == nil {
		apiErr = common.ErrInternalError
	}

	fields := []zap.Field{
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("code", apiErr.Code),
		zap.Error(err),
	}
	if apiErr.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求被拒絕", fields...)
	}

	resp := common.ErrorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	}
	// 4xx 的原因對呼叫者有用；5xx 不外洩內部細節
	if apiErr.Status < http.StatusInternalServerError && err != nil {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(apiErr.Status, resp)
}

// BadRequest 請求格式錯誤
func BadRequest(c *gin.Context, err error) {
	common.LogWarn("無效的請求格式",
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: common.ErrInvalidRequest.Message,
		Details: err.Error(),
	})
}
