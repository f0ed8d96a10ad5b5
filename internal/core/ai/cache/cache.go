package cache

import (
	"context"
	"fmt"
	"strings"

	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeCache 以 (使用者, 影片) 為鍵的抽取結果快取
type RecipeCache interface {
	Get(ctx context.Context, userID, videoID string) (*common.ExtractedRecipe, bool)
	Set(ctx context.Context, userID, videoID string, recipe *common.ExtractedRecipe) error
	Delete(ctx context.Context, userID, videoID string) error
	Close() error
}

// New 依設定建立快取；停用時回傳 nil，呼叫端視為永遠未命中
func New(ctx context.Context, cfg *config.Config) (RecipeCache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch strings.ToLower(cfg.Cache.Backend) {
	case "", "memory":
		return NewManager(cfg.Cache), nil
	case "redis":
		svc, err := NewService(ctx, cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		common.LogWarn("Unknown cache backend", zap.String("backend", cfg.Cache.Backend))
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

// recipeKey 生成緩存鍵
func recipeKey(userID, videoID string) string {
	return fmt.Sprintf("recipe:%s:%s", userID, videoID)
}

// cloneRecipe 避免呼叫端修改到快取內的切片
func cloneRecipe(r *common.ExtractedRecipe) *common.ExtractedRecipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]string{}, r.Ingredients...)
	c.Steps = append([]string{}, r.Steps...)
	return &c
}
