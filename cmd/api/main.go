package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-pantry/internal/api"
	"recipe-pantry/internal/api/handlers/health"
	"recipe-pantry/internal/core/ai/cache"
	"recipe-pantry/internal/core/ai/service"
	"recipe-pantry/internal/core/recipe"
	"recipe-pantry/internal/core/video"
	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/infrastructure/metrics"
	"recipe-pantry/internal/infrastructure/store"
	"recipe-pantry/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("llm_api_key", common.MaskSecret(cfg.LLM.LLMAPIKey())),
		zap.String("database", cfg.Database.Path),
	)

	// 資料庫
	db, err := store.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := store.Close(db); err != nil {
			common.LogWarn("Failed to close database", zap.Error(err))
		}
	}()

	// 初始化快取；redis 無法連線時退回無快取
	recipeCache, err := cache.New(context.Background(), cfg)
	if err != nil {
		common.LogError("Recipe cache unavailable, continuing without cache",
			zap.String("backend", cfg.Cache.Backend),
			zap.Error(err),
		)
		recipeCache = nil
	}
	if recipeCache != nil {
		defer recipeCache.Close()
	}

	generator, err := service.NewGenerator(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize LLM client", zap.Error(err))
	}

	youtube := video.NewClient(video.Config{
		APIKey:  cfg.YouTube.APIKey,
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.YouTube.Timeout,
	})
	if !youtube.Configured() {
		common.LogWarn("YouTube API key is not set, videos must be saved with manual metadata")
	}

	collector := metrics.New()
	pantryService := recipe.NewPantryService(
		store.New(db),
		recipe.NewExtractor(generator),
		youtube,
		recipeCache,
		collector,
	)

	backend := "disabled"
	var cacheStats func() map[string]interface{}
	if recipeCache != nil {
		backend = cfg.Cache.Backend
	}
	if manager, ok := recipeCache.(*cache.CacheManager); ok {
		cacheStats = manager.GetStats
	}

	// 設置路由
	router := api.SetupRouter(cfg, api.Dependencies{
		Service: pantryService,
		DB:      db,
		Metrics: collector,
		Services: health.ServiceStatus{
			LLMConfigured:     generator.Configured(),
			LLMProvider:       cfg.LLM.Provider,
			YouTubeConfigured: youtube.Configured(),
			CacheBackend:      backend,
		},
		CacheStats: cacheStats,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
