package recipe

import (
	"testing"

	"recipe-pantry/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIngredients_Available(t *testing.T) {
	inventory := []common.InventoryEntry{{ID: "inv-1", Name: "牛乳", Quantity: 3, Unit: "本"}}

	matches := MatchIngredients([]string{"牛乳 200ml"}, inventory)

	require.Len(t, matches, 1)
	assert.Equal(t, common.MatchedIngredient{
		ExtractedIngredient: "牛乳 200ml",
		IngredientID:        "inv-1",
		IngredientName:      "牛乳",
		Available:           true,
		AvailableQuantity:   3,
		Unit:                "本",
	}, matches[0])
	assert.Equal(t, 100, CalculateMatchPercentage(matches))
}

func TestMatchIngredients_Unmatched(t *testing.T) {
	matches := MatchIngredients([]string{"謎の食材"}, nil)

	require.Len(t, matches, 1)
	assert.Equal(t, common.MatchedIngredient{ExtractedIngredient: "謎の食材"}, matches[0])
	assert.Equal(t, 0, CalculateMatchPercentage(matches))
}

func TestMatchIngredients_ZeroQuantityIsUnavailable(t *testing.T) {
	inventory := []common.InventoryEntry{{ID: "inv-1", Name: "卵", Quantity: 0, Unit: "個"}}

	matches := MatchIngredients([]string{"卵 2個"}, inventory)

	require.Len(t, matches, 1)
	assert.False(t, matches[0].Available)
	assert.Equal(t, "inv-1", matches[0].IngredientID)
	assert.Equal(t, "卵", matches[0].IngredientName)
}

func TestMatchIngredients_Clauses(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		invName  string
		expected bool
	}{
		{"line contains inventory name", "豚バラ肉 100g", "豚バラ肉", true},
		{"inventory name contains first token", "トマト 2個", "ミニトマト", true},
		{"inventory name contains later token", "刻んだ ねぎ", "長ねぎ", true},
		{"case-insensitive", "Olive Oil 大さじ1", "olive oil", true},
		{"no overlap", "鶏むね肉 300g", "牛乳", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory := []common.InventoryEntry{{ID: "x", Name: tt.invName, Quantity: 1, Unit: "個"}}
			matches := MatchIngredients([]string{tt.line}, inventory)
			require.Len(t, matches, 1)
			assert.Equal(t, tt.expected, matches[0].Available)
		})
	}
}

func TestMatchIngredients_FirstMatchWins(t *testing.T) {
	inventory := []common.InventoryEntry{
		{ID: "a", Name: "牛乳", Quantity: 1, Unit: "本"},
		{ID: "b", Name: "低脂肪牛乳", Quantity: 1, Unit: "本"},
	}

	matches := MatchIngredients([]string{"低脂肪牛乳 200ml"}, inventory)

	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].IngredientID)
}

func TestMatchIngredients_SkipsBlankInventoryNames(t *testing.T) {
	inventory := []common.InventoryEntry{
		{ID: "blank", Name: "  ", Quantity: 5, Unit: "個"},
		{ID: "egg", Name: "卵", Quantity: 2, Unit: "個"},
	}

	matches := MatchIngredients([]string{"砂糖 10g", "卵 1個"}, inventory)

	require.Len(t, matches, 2)
	assert.False(t, matches[0].Available)
	assert.Empty(t, matches[0].IngredientID)
	assert.Equal(t, "egg", matches[1].IngredientID)
}

func TestMatchIngredients_UsesInventoryNameAsIs(t *testing.T) {
	inventory := []common.InventoryEntry{
		{ID: "milk", Name: "牛乳 ", Quantity: 1, Unit: "本"},
	}

	matches := MatchIngredients([]string{"牛乳200ml", "低脂肪牛乳 1本"}, inventory)

	require.Len(t, matches, 2)
	assert.Empty(t, matches[0].IngredientID, "trailing space in the inventory name is significant")
	assert.Equal(t, "milk", matches[1].IngredientID)
}

func TestMatchIngredients_PreservesOrderAndIsPure(t *testing.T) {
	extracted := []string{"卵 2個", "謎の食材", "牛乳 200ml"}
	inventory := []common.InventoryEntry{
		{ID: "milk", Name: "牛乳", Quantity: 1, Unit: "本"},
		{ID: "egg", Name: "卵", Quantity: 6, Unit: "個"},
	}
	extractedCopy := append([]string(nil), extracted...)
	inventoryCopy := append([]common.InventoryEntry(nil), inventory...)

	first := MatchIngredients(extracted, inventory)
	second := MatchIngredients(extracted, inventory)

	require.Len(t, first, len(extracted))
	for i, m := range first {
		assert.Equal(t, extracted[i], m.ExtractedIngredient)
	}
	assert.Equal(t, first, second)
	assert.Equal(t, extractedCopy, extracted)
	assert.Equal(t, inventoryCopy, inventory)
}

func TestCalculateMatchPercentage(t *testing.T) {
	available := common.MatchedIngredient{Available: true}
	missing := common.MatchedIngredient{}

	tests := []struct {
		name     string
		matches  []common.MatchedIngredient
		expected int
	}{
		{"empty", nil, 0},
		{"all available", []common.MatchedIngredient{available, available}, 100},
		{"none available", []common.MatchedIngredient{missing, missing}, 0},
		{"two of three rounds up", []common.MatchedIngredient{available, available, missing}, 67},
		{"one of three rounds down", []common.MatchedIngredient{available, missing, missing}, 33},
		{"half", []common.MatchedIngredient{available, missing}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateMatchPercentage(tt.matches))
		})
	}
}

func TestScoreRecipe(t *testing.T) {
	inventory := []common.InventoryEntry{{ID: "egg", Name: "卵", Quantity: 2, Unit: "個"}}

	pending := ScoreRecipe("vid-1", "親子丼", "", nil, inventory)
	assert.False(t, pending.Analyzed)
	assert.Equal(t, 0, pending.Score)

	recipe := &common.ExtractedRecipe{Ingredients: []string{"卵 2個", "鶏もも肉 200g"}}
	scored := ScoreRecipe("vid-1", "親子丼", "", recipe, inventory)
	assert.True(t, scored.Analyzed)
	assert.Equal(t, 50, scored.Score)
	assert.Equal(t, 1, scored.Available)
	assert.Equal(t, 2, scored.Total)
}

func TestRankRecipes(t *testing.T) {
	scores := []RecipeScore{
		{VideoID: "pending", Analyzed: false},
		{VideoID: "low", Analyzed: true, Score: 25},
		{VideoID: "none", Analyzed: true, Score: 0},
		{VideoID: "high", Analyzed: true, Score: 80},
		{VideoID: "also-low", Analyzed: true, Score: 25},
	}

	ranked := RankRecipes(scores)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.VideoID
	}
	assert.Equal(t, []string{"high", "low", "also-low", "pending", "none"}, ids)
	assert.Equal(t, StatusScored, ranked[0].Status)
	assert.Equal(t, StatusNeedsAnalysis, ranked[3].Status)
	assert.Equal(t, StatusNoOverlap, ranked[4].Status)
	assert.Empty(t, scores[0].Status, "input must not be modified")
}
