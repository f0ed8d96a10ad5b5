package recipe

import (
	"math"
	"sort"
	"strings"

	"recipe-pantry/internal/pkg/common"
)

// MatchIngredients 逐行比對抽取出的食材與庫存，輸出順序與輸入一致
// 比對採「第一個符合者勝出」的子字串規則，不做相似度排序
func MatchIngredients(extracted []string, inventory []common.InventoryEntry) []common.MatchedIngredient {
	matches := make([]common.MatchedIngredient, 0, len(extracted))
	for _, line := range extracted {
		match := common.MatchedIngredient{ExtractedIngredient: line}

		if item, ok := findInventoryMatch(line, inventory); ok {
			match.IngredientID = item.ID
			match.IngredientName = item.Name
			match.Available = item.Quantity > 0
			match.AvailableQuantity = item.Quantity
			match.Unit = item.Unit
		}

		matches = append(matches, match)
	}
	return matches
}

func findInventoryMatch(line string, inventory []common.InventoryEntry) (common.InventoryEntry, bool) {
	lowered := strings.ToLower(line)
	tokens := strings.Fields(lowered)

	for _, item := range inventory {
		// 空白名稱會與任何一行相符
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		name := strings.ToLower(item.Name)

		if strings.Contains(lowered, name) {
			return item, true
		}
		if len(tokens) > 0 && strings.Contains(name, tokens[0]) {
			return item, true
		}
		for _, token := range tokens {
			if strings.Contains(name, token) {
				return item, true
			}
		}
	}
	return common.InventoryEntry{}, false
}

// CalculateMatchPercentage 可用食材比例（0–100），空清單為 0
func CalculateMatchPercentage(matches []common.MatchedIngredient) int {
	if len(matches) == 0 {
		return 0
	}
	available := 0
	for _, m := range matches {
		if m.Available {
			available++
		}
	}
	return int(math.Round(100 * float64(available) / float64(len(matches))))
}

// ScoreStatus 排名列表中的狀態標記
type ScoreStatus string

const (
	StatusScored        ScoreStatus = "scored"
	StatusNeedsAnalysis ScoreStatus = "needs_analysis"
	StatusNoOverlap     ScoreStatus = "no_overlap"
)

// RecipeScore 單一影片食譜的可烹調分數
type RecipeScore struct {
	VideoID   string      `json:"video_id"`
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail,omitempty"`
	Score     int         `json:"score"`
	Analyzed  bool        `json:"analyzed"`
	Status    ScoreStatus `json:"status"`
	Available int         `json:"available_count"`
	Total     int         `json:"total_count"`
}

// RankRecipes 依分數由高到低排序（同分保持原順序），並標記 0 分的原因
func RankRecipes(scores []RecipeScore) []RecipeScore {
	ranked := make([]RecipeScore, len(scores))
	copy(ranked, scores)

	for i := range ranked {
		switch {
		case !ranked[i].Analyzed:
			ranked[i].Score = 0
			ranked[i].Status = StatusNeedsAnalysis
		case ranked[i].Score == 0:
			ranked[i].Status = StatusNoOverlap
		default:
			ranked[i].Status = StatusScored
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ScoreRecipe 對已抽取的食譜計算分數；recipe 為 nil 表示尚未分析
func ScoreRecipe(videoID, title, thumbnail string, recipe *common.ExtractedRecipe, inventory []common.InventoryEntry) RecipeScore {
	score := RecipeScore{VideoID: videoID, Title: title, Thumbnail: thumbnail}
	if recipe == nil {
		return score
	}

	matches := MatchIngredients(recipe.Ingredients, inventory)
	score.Analyzed = true
	score.Score = CalculateMatchPercentage(matches)
	score.Total = len(matches)
	for _, m := range matches {
		if m.Available {
			score.Available++
		}
	}
	return score
}
