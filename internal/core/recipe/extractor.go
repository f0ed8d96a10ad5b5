package recipe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"recipe-pantry/internal/core/ai/provider"
	"recipe-pantry/internal/pkg/common"

	"go.uber.org/zap"
)

var fencedJSONPattern = regexp.MustCompile("(?is)```json(.*?)```")

// Extractor 透過生成式模型把影片說明轉成結構化食譜
type Extractor struct {
	generator provider.TextGenerator
}

// NewExtractor 創建食譜抽取器，generator 由呼叫端建立並注入
func NewExtractor(generator provider.TextGenerator) *Extractor {
	return &Extractor{generator: generator}
}

// ExtractionPayload 模型回應的 JSON 形狀
type ExtractionPayload struct {
	Ingredients []string              `json:"ingredients"`
	Steps       []string              `json:"steps"`
	Servings    common.OptionalString `json:"servings"`
	CookingTime common.OptionalString `json:"cookingTime"`
}

// Extract 抽取食譜；不快取、不寫入資料庫
func (e *Extractor) Extract(ctx context.Context, video common.VideoInfo) (*common.ExtractedRecipe, error) {
	if video.Title == "" && video.Description == "" {
		return nil, common.NewValidationError("title or description is required")
	}

	if e.generator == nil || !e.generator.Configured() {
		return nil, common.NewConfigurationError("llm", "generative model credential is not configured")
	}

	prompt := BuildExtractionPrompt(video.Title, video.Description, video.ChannelTitle)

	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		if common.IsUpstreamError(err) || common.IsConfigurationError(err) {
			return nil, err
		}
		return nil, common.NewUpstreamError("llm", 0, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, common.NewUpstreamError("llm", 0, errors.New("empty response text"))
	}

	payload, err := ParseExtraction(raw)
	if err != nil {
		common.LogWarn("Failed to parse extraction response",
			zap.String("video_id", video.VideoID),
			zap.String("model", e.generator.Model()),
			zap.Error(err),
		)
		return nil, err
	}

	recipe := &common.ExtractedRecipe{
		Title:       video.Title,
		Ingredients: payload.Ingredients,
		Steps:       payload.Steps,
		Servings:    payload.Servings,
		CookingTime: payload.CookingTime,
		Description: video.Description,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}

	common.LogInfo("Recipe extracted",
		zap.String("video_id", video.VideoID),
		zap.Int("ingredients_count", len(recipe.Ingredients)),
		zap.Int("steps_count", len(recipe.Steps)),
	)

	return recipe, nil
}

// BuildExtractionPrompt 組出固定格式的抽取指示
func BuildExtractionPrompt(title, description, channelTitle string) string {
	var sb strings.Builder
	sb.WriteString("以下のYouTube料理動画の情報から、レシピの材料と手順を抽出してください。\n\n")
	sb.WriteString(fmt.Sprintf("タイトル: %s\n", title))
	sb.WriteString(fmt.Sprintf("チャンネル: %s\n", channelTitle))
	sb.WriteString("説明文:\n")
	sb.WriteString(description)
	sb.WriteString("\n\n以下のJSON形式のみで回答してください:\n")
	sb.WriteString("{\n")
	sb.WriteString("  \"ingredients\": [\"材料名 分量\", ...],\n")
	sb.WriteString("  \"steps\": [\"手順1\", \"手順2\", ...],\n")
	sb.WriteString("  \"servings\": \"何人分\" または null,\n")
	sb.WriteString("  \"cookingTime\": \"調理時間\" または null\n")
	sb.WriteString("}\n\n")
	sb.WriteString("注意:\n")
	sb.WriteString("- JSON以外の文章は一切含めないでください。\n")
	sb.WriteString("- 説明文に書かれていない情報を推測したり追加したりしないでください。\n")
	sb.WriteString("- 材料や手順が見つからない場合は空の配列を返してください。\n")
	return sb.String()
}

// RecoverJSONCandidate 從模型原始文字中取出候選 JSON 文字
//  1. ```json ... ``` 區塊
//  2. 第一個 { 到最後一個 }
//  3. 原文
func RecoverJSONCandidate(raw string) string {
	if m := fencedJSONPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end != -1 && end > start {
		return raw[start : end+1]
	}

	return raw
}

// ParseExtraction 先取候選文字再嚴格解析；失敗回傳 ExtractionParseError
func ParseExtraction(raw string) (*ExtractionPayload, error) {
	candidate := RecoverJSONCandidate(raw)

	var payload ExtractionPayload
	if err := common.ParseJSON(candidate, &payload); err != nil {
		return nil, common.NewExtractionParseError(candidate, err)
	}
	return &payload, nil
}

// timedExtract 包一層計時，供服務層記錄指標
func timedExtract(ctx context.Context, e *Extractor, video common.VideoInfo) (*common.ExtractedRecipe, time.Duration, error) {
	start := time.Now()
	recipe, err := e.Extract(ctx, video)
	return recipe, time.Since(start), err
}
