package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionalString 可為 null 的字串欄位（份量、烹調時間）
type OptionalString struct {
	Value string
	Valid bool
}

// Some 建立有值的 OptionalString
func Some(value string) OptionalString {
	return OptionalString{Value: value, Valid: true}
}

// None 建立空的 OptionalString
func None() OptionalString {
	return OptionalString{}
}

// Ptr 轉為指標，無值時回傳 nil
func (o OptionalString) Ptr() *string {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// MarshalJSON 無值時輸出 null
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON 接受字串、數字或 null；模型常把份量回成數字
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*o = OptionalString{}
		return nil
	}

	var str string
	if err := json.Unmarshal(trimmed, &str); err == nil {
		*o = Some(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		if _, err := strconv.ParseFloat(num.String(), 64); err == nil {
			*o = Some(num.String())
			return nil
		}
	}

	return fmt.Errorf("invalid optional string: %s", string(trimmed))
}

// VideoInfo 影片中繼資料
type VideoInfo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channel_title"`
	Thumbnail    string `json:"thumbnail"`
}

// ExtractedRecipe 從影片說明抽取出的食譜，產生後不再修改
type ExtractedRecipe struct {
	Title       string         `json:"title"`
	Ingredients []string       `json:"ingredients"`
	Steps       []string       `json:"steps"`
	Servings    OptionalString `json:"servings"`
	CookingTime OptionalString `json:"cooking_time"`
	Description string         `json:"description"`
}

// IsEmpty 食材與步驟皆為空（語意上的「找不到食譜」）
func (r *ExtractedRecipe) IsEmpty() bool {
	return r == nil || (len(r.Ingredients) == 0 && len(r.Steps) == 0)
}

// InventoryEntry 使用者庫存中的一項食材
type InventoryEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ParsedIngredientLine 單行食材解析結果
type ParsedIngredientLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MatchedIngredient 單行食材與庫存的比對結果，每次重新計算不落地
type MatchedIngredient struct {
	ExtractedIngredient string  `json:"extracted_ingredient"`
	IngredientID        string  `json:"ingredient_id"`
	IngredientName      string  `json:"ingredient_name"`
	Available           bool    `json:"available"`
	AvailableQuantity   float64 `json:"available_quantity"`
	Unit                string  `json:"unit"`
}
