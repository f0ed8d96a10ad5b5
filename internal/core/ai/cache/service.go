package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service Redis 快取服務
type Service struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ RecipeCache = (*Service)(nil)

// NewService 創建緩存服務並測試連線
func NewService(ctx context.Context, cfg config.CacheConfig, rcfg config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis cache connected",
		zap.String("addr", rcfg.Addr),
		zap.Int("db", rcfg.DB),
		zap.Duration("ttl", cfg.TTL),
	)

	return NewServiceWithClient(client, cfg.TTL, rcfg.KeyPrefix), nil
}

// NewServiceWithClient 使用既有的 Redis 連線
func NewServiceWithClient(client *redis.Client, ttl time.Duration, prefix string) *Service {
	return &Service{client: client, ttl: ttl, prefix: prefix}
}

// Get 獲取緩存；Redis 錯誤視為未命中
func (s *Service) Get(ctx context.Context, userID, videoID string) (*common.ExtractedRecipe, bool) {
	key := s.generateKey(userID, videoID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.LogWarn("Failed to get cache", zap.String("key", key), zap.Error(err))
		}
		common.LogCacheMiss("redis", key)
		return nil, false
	}

	var recipe common.ExtractedRecipe
	if err := common.ParseJSONBytes(data, &recipe); err != nil {
		common.LogWarn("Failed to unmarshal cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	common.LogCacheHit("redis", key)
	return &recipe, true
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, userID, videoID string, recipe *common.ExtractedRecipe) error {
	if recipe == nil {
		return nil
	}

	data, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := s.client.Set(ctx, s.generateKey(userID, videoID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 移除緩存
func (s *Service) Delete(ctx context.Context, userID, videoID string) error {
	if err := s.client.Del(ctx, s.generateKey(userID, videoID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

// generateKey 生成緩存鍵
func (s *Service) generateKey(userID, videoID string) string {
	return s.prefix + recipeKey(userID, videoID)
}
