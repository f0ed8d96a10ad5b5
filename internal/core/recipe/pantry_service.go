package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-pantry/internal/core/ai/cache"
	"recipe-pantry/internal/core/video"
	"recipe-pantry/internal/infrastructure/metrics"
	"recipe-pantry/internal/infrastructure/store"
	"recipe-pantry/internal/pkg/common"

	"go.uber.org/zap"
)

// VideoSource 影片中繼資料來源
type VideoSource interface {
	GetVideo(ctx context.Context, videoID string) (*common.VideoInfo, error)
}

// 分析結果來源
const (
	SourceCache     = "cache"
	SourceStore     = "store"
	SourceExtracted = "extracted"
)

// AnalysisResult 抽取結果與其來源
type AnalysisResult struct {
	VideoID string                  `json:"video_id"`
	Recipe  *common.ExtractedRecipe `json:"recipe"`
	Source  string                  `json:"source"`
}

// MatchResult 食材比對結果
type MatchResult struct {
	VideoID        string                     `json:"video_id,omitempty"`
	Title          string                     `json:"title,omitempty"`
	Matches        []common.MatchedIngredient `json:"matches"`
	Score          int                        `json:"score"`
	AvailableCount int                        `json:"available_count"`
	TotalCount     int                        `json:"total_count"`
}

// SaveVideoRequest 收藏影片；有提供標題或說明時不呼叫 YouTube
type SaveVideoRequest struct {
	URLOrID      string
	Title        string
	Description  string
	ChannelTitle string
}

// PantryService 串起影片、抽取、比對、購物清單與烹調紀錄
type PantryService struct {
	store     *store.Store
	extractor *Extractor
	videos    VideoSource
	cache     cache.RecipeCache
	metrics   *metrics.Collector
}

// NewPantryService 創建服務；videos、recipeCache 與 collector 可為 nil
func NewPantryService(st *store.Store, extractor *Extractor, videos VideoSource, recipeCache cache.RecipeCache, collector *metrics.Collector) *PantryService {
	return &PantryService{
		store:     st,
		extractor: extractor,
		videos:    videos,
		cache:     recipeCache,
		metrics:   collector,
	}
}

// Store 資料存取層
func (s *PantryService) Store() *store.Store {
	return s.store
}

// ExtractRecipe 無狀態抽取：不讀寫快取與資料庫
func (s *PantryService) ExtractRecipe(ctx context.Context, info common.VideoInfo) (*common.ExtractedRecipe, error) {
	recipe, err := s.runExtraction(ctx, info)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// SaveVideo 收藏影片
func (s *PantryService) SaveVideo(ctx context.Context, userID string, req SaveVideoRequest) (*store.SavedVideo, error) {
	videoID, err := video.ParseVideoID(req.URLOrID)
	if err != nil {
		return nil, err
	}

	var info *common.VideoInfo
	if strings.TrimSpace(req.Title) != "" || strings.TrimSpace(req.Description) != "" {
		info = &common.VideoInfo{
			VideoID:      videoID,
			Title:        req.Title,
			Description:  req.Description,
			ChannelTitle: req.ChannelTitle,
		}
	} else {
		if s.videos == nil {
			return nil, common.NewConfigurationError("youtube", "video metadata source is not configured")
		}
		info, err = s.videos.GetVideo(ctx, videoID)
		if err != nil {
			return nil, err
		}
	}

	saved, err := s.store.SaveVideo(ctx, userID, *info)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Video saved",
		zap.String("user_id", userID),
		zap.String("video_id", videoID),
	)
	return saved, nil
}

// DeleteVideo 取消收藏並移除快取
func (s *PantryService) DeleteVideo(ctx context.Context, userID, videoID string) error {
	if err := s.store.DeleteVideo(ctx, userID, videoID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID, videoID); err != nil {
			common.LogWarn("Failed to delete cached recipe", zap.String("video_id", videoID), zap.Error(err))
		}
	}
	return nil
}

// AnalyzeVideo 取得影片食譜：快取 → 資料庫 → 生成式模型；force 時跳過前兩者
func (s *PantryService) AnalyzeVideo(ctx context.Context, userID, videoID string, force bool) (*AnalysisResult, error) {
	saved, err := s.store.GetVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	if !force {
		if s.cache != nil {
			recipe, ok := s.cache.Get(ctx, userID, videoID)
			s.metrics.CacheLookup(ok)
			if ok {
				return &AnalysisResult{VideoID: videoID, Recipe: recipe, Source: SourceCache}, nil
			}
		}

		if recipe := saved.Recipe(); recipe != nil {
			s.cacheRecipe(ctx, userID, videoID, recipe)
			return &AnalysisResult{VideoID: videoID, Recipe: recipe, Source: SourceStore}, nil
		}
	}

	info := saved.Info()
	if strings.TrimSpace(info.Description) == "" && s.videos != nil {
		if fresh, err := s.videos.GetVideo(ctx, videoID); err == nil {
			info = *fresh
			if _, err := s.store.SaveVideo(ctx, userID, info); err != nil {
				return nil, err
			}
		} else {
			common.LogWarn("Failed to refresh video metadata", zap.String("video_id", videoID), zap.Error(err))
		}
	}

	recipe, err := s.runExtraction(ctx, info)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveRecipe(ctx, userID, videoID, recipe); err != nil {
		return nil, err
	}
	s.cacheRecipe(ctx, userID, videoID, recipe)

	return &AnalysisResult{VideoID: videoID, Recipe: recipe, Source: SourceExtracted}, nil
}

// runExtraction 呼叫抽取器並記錄指標；空結果轉為 ErrNothingExtracted
func (s *PantryService) runExtraction(ctx context.Context, info common.VideoInfo) (*common.ExtractedRecipe, error) {
	recipe, duration, err := timedExtract(ctx, s.extractor, info)
	if err != nil {
		s.metrics.Extraction(extractionOutcome(err), duration)
		return nil, err
	}

	if recipe.IsEmpty() {
		s.metrics.Extraction(metrics.OutcomeEmpty, duration)
		common.LogInfo("No recipe found in video", zap.String("video_id", info.VideoID))
		return nil, fmt.Errorf("video %s: %w", info.VideoID, common.ErrNothingExtracted)
	}

	s.metrics.Extraction(metrics.OutcomeSuccess, duration)
	return recipe, nil
}

func (s *PantryService) cacheRecipe(ctx context.Context, userID, videoID string, recipe *common.ExtractedRecipe) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, userID, videoID, recipe); err != nil {
		common.LogWarn("Failed to cache recipe", zap.String("video_id", videoID), zap.Error(err))
	}
}

func extractionOutcome(err error) string {
	switch {
	case common.IsValidationError(err):
		return metrics.OutcomeInvalid
	case common.IsConfigurationError(err):
		return metrics.OutcomeUnavailable
	case common.IsExtractionParseError(err):
		return metrics.OutcomeParseError
	case common.IsUpstreamError(err):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeError
	}
}

// MatchLines 以呼叫者的庫存比對任意食材清單
func (s *PantryService) MatchLines(ctx context.Context, userID string, lines []string) (*MatchResult, error) {
	items, err := s.store.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildMatchResult(lines, store.Entries(items)), nil
}

// MatchVideo 已分析影片與庫存的比對
func (s *PantryService) MatchVideo(ctx context.Context, userID, videoID string) (*MatchResult, error) {
	saved, recipe, err := s.analyzedVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	result, err := s.MatchLines(ctx, userID, recipe.Ingredients)
	if err != nil {
		return nil, err
	}
	result.VideoID = videoID
	result.Title = saved.Title
	s.metrics.MatchScore(result.Score)
	return result, nil
}

func (s *PantryService) analyzedVideo(ctx context.Context, userID, videoID string) (*store.SavedVideo, *common.ExtractedRecipe, error) {
	saved, err := s.store.GetVideo(ctx, userID, videoID)
	if err != nil {
		return nil, nil, err
	}
	recipe := saved.Recipe()
	if recipe == nil {
		return nil, nil, fmt.Errorf("video %s: %w", videoID, common.ErrNotAnalyzed)
	}
	return saved, recipe, nil
}

func buildMatchResult(lines []string, inventory []common.InventoryEntry) *MatchResult {
	matches := MatchIngredients(lines, inventory)
	result := &MatchResult{
		Matches:    matches,
		Score:      CalculateMatchPercentage(matches),
		TotalCount: len(matches),
	}
	for _, m := range matches {
		if m.Available {
			result.AvailableCount++
		}
	}
	return result
}

// RankVideos 依可烹調分數排序使用者收藏的影片
func (s *PantryService) RankVideos(ctx context.Context, userID string) ([]RecipeScore, error) {
	videos, err := s.store.ListVideos(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	inventory := store.Entries(items)

	scores := make([]RecipeScore, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		score := ScoreRecipe(v.VideoID, v.Title, v.Thumbnail, v.Recipe(), inventory)
		if score.Analyzed {
			s.metrics.MatchScore(score.Score)
		}
		scores = append(scores, score)
	}

	return RankRecipes(scores), nil
}

// BuildShoppingList 把缺少的食材解析後加入購物清單
func (s *PantryService) BuildShoppingList(ctx context.Context, userID, videoID string) ([]store.ShoppingItem, error) {
	result, err := s.MatchVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	var missing []store.ShoppingItem
	for _, m := range result.Matches {
		if m.Available {
			continue
		}
		parsed := ParseIngredientLine(m.ExtractedIngredient)
		if parsed.Name == "" {
			continue
		}
		missing = append(missing, store.ShoppingItem{
			Name:          parsed.Name,
			Quantity:      parsed.Quantity,
			Unit:          parsed.Unit,
			SourceVideoID: videoID,
		})
	}

	if len(missing) == 0 {
		return []store.ShoppingItem{}, nil
	}

	saved, err := s.store.AddShoppingItems(ctx, userID, missing)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Shopping list updated",
		zap.String("user_id", userID),
		zap.String("video_id", videoID),
		zap.Int("items", len(saved)),
	)
	return saved, nil
}

// Cook 記錄一次烹調並扣除庫存；單位不一致或無法計量的食材只記錄不扣除
func (s *PantryService) Cook(ctx context.Context, userID, videoID string, servingsMultiplier float64) (*store.CookingSession, error) {
	switch {
	case servingsMultiplier < 0:
		return nil, common.NewValidationError("servings_multiplier must not be negative")
	case servingsMultiplier == 0:
		servingsMultiplier = 1
	}

	result, err := s.MatchVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	session := &store.CookingSession{
		UserID:             userID,
		VideoID:            videoID,
		Title:              result.Title,
		ServingsMultiplier: servingsMultiplier,
		Lines:              make([]store.CookingSessionLine, 0, len(result.Matches)),
	}

	for _, m := range result.Matches {
		session.Lines = append(session.Lines, depletionLine(m, servingsMultiplier))
	}

	if err := s.store.CreateCookingSession(ctx, session); err != nil {
		return nil, err
	}

	for _, line := range session.Lines {
		if !line.Deducted && line.InventoryItemID != "" {
			common.LogInfo("Ingredient not deducted",
				zap.String("session_id", session.ID),
				zap.String("ingredient", line.ExtractedIngredient),
				zap.String("note", line.Note),
			)
		}
	}
	return session, nil
}

func depletionLine(m common.MatchedIngredient, multiplier float64) store.CookingSessionLine {
	parsed := ParseIngredientLine(m.ExtractedIngredient)
	line := store.CookingSessionLine{
		ExtractedIngredient: m.ExtractedIngredient,
		InventoryItemID:     m.IngredientID,
		Quantity:            parsed.Quantity * multiplier,
		Unit:                parsed.Unit,
	}

	switch {
	case m.IngredientID == "":
		line.Note = "not in inventory"
	case !m.Available:
		line.Note = "out of stock"
	case !IsMeasurable(parsed.Unit):
		line.Note = "unit not measurable"
	case !unitsAgree(parsed.Unit, m.Unit):
		line.Note = fmt.Sprintf("unit mismatch: recipe %s, inventory %s", parsed.Unit, m.Unit)
	default:
		line.Deducted = true
	}
	return line
}

// unitsAgree ml 與 cc 視為相同
func unitsAgree(a, b string) bool {
	normalize := func(u string) string {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "cc" {
			return "ml"
		}
		return u
	}
	return normalize(a) == normalize(b)
}
