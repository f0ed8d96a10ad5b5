package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/infrastructure/store"
	"recipe-pantry/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Services  ServiceStatus          `json:"services"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// ServiceStatus 外部依賴的設定狀態
type ServiceStatus struct {
	LLMConfigured     bool   `json:"llm_configured"`
	LLMProvider       string `json:"llm_provider"`
	YouTubeConfigured bool   `json:"youtube_configured"`
	CacheBackend      string `json:"cache_backend"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg        *config.Config
	db         *gorm.DB
	services   ServiceStatus
	cacheStats func() map[string]interface{}
}

// NewHandler 創建健康檢查處理器；db 為 nil 時 /ready 回報未就緒，cacheStats 可為 nil
func NewHandler(cfg *config.Config, db *gorm.DB, services ServiceStatus, cacheStats func() map[string]interface{}) *Handler {
	return &Handler{cfg: cfg, db: db, services: services, cacheStats: cacheStats}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Services: h.services,
	}
	if h.cacheStats != nil {
		response.Cache = h.cacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：資料庫可連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "database": "missing"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := store.Ping(ctx, h.db); err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "database": "unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "ok",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
