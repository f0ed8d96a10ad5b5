package api

import (
	"net/http"
	"time"

	"recipe-pantry/internal/api/handlers/health"
	"recipe-pantry/internal/api/handlers/pantry"
	recipeHandler "recipe-pantry/internal/api/handlers/recipe"
	"recipe-pantry/internal/api/middleware"
	recipeService "recipe-pantry/internal/core/recipe"
	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/infrastructure/metrics"
	"recipe-pantry/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Service  *recipeService.PantryService
	DB       *gorm.DB
	Metrics  *metrics.Collector
	Services health.ServiceStatus
	// CacheStats 記憶體快取統計；redis 或停用時為 nil
	CacheStats func() map[string]interface{}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrorResponse{
			Code:    common.ErrNotFound.Code,
			Message: common.ErrNotFound.Message,
			Details: c.Request.URL.Path,
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.ErrorResponse{
			Code:    common.ErrMethodNotAllowed.Code,
			Message: common.ErrMethodNotAllowed.Message,
			Details: c.Request.Method + " " + c.Request.URL.Path,
		})
	})

	// 註冊基礎中間件
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(deps.Metrics.HTTPMiddleware())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.UserIDHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, deps.DB, deps.Services, deps.CacheStats)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	api.Use(middleware.RequireUser())
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())

	recipes := recipeHandler.NewHandler(deps.Service)
	pantryHandler := pantry.NewHandler(deps.Service)

	// 無狀態工具
	recipeGroup := api.Group("/recipe")
	{
		recipeGroup.POST("/extract", recipes.ExtractRecipe)
		recipeGroup.POST("/match", recipes.MatchIngredients)
		recipeGroup.POST("/parse", recipes.ParseIngredients)
	}

	// 庫存
	inventory := api.Group("/inventory")
	{
		inventory.GET("", pantryHandler.ListInventory)
		inventory.POST("", pantryHandler.CreateInventory)
		inventory.PUT("/:id", pantryHandler.UpdateInventory)
		inventory.DELETE("/:id", pantryHandler.DeleteInventory)
	}

	// 收藏影片
	videos := api.Group("/videos")
	{
		videos.GET("", recipes.ListVideos)
		videos.POST("", recipes.SaveVideo)
		videos.DELETE("/:videoId", recipes.DeleteVideo)
		videos.POST("/:videoId/analyze", recipes.AnalyzeVideo)
		videos.GET("/:videoId/match", recipes.MatchVideo)
		videos.POST("/:videoId/shopping-list", pantryHandler.BuildShoppingList)
		videos.POST("/:videoId/cook", pantryHandler.Cook)
	}
	api.GET("/recipes/ranked", recipes.RankedRecipes)

	// 購物清單
	shopping := api.Group("/shopping-list")
	{
		shopping.GET("", pantryHandler.ListShoppingItems)
		shopping.PATCH("/:id", pantryHandler.CheckShoppingItem)
		shopping.DELETE("/:id", pantryHandler.DeleteShoppingItem)
	}

	api.GET("/cooking-sessions", pantryHandler.ListCookingSessions)

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
