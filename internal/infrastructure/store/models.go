package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"recipe-pantry/internal/pkg/common"
)

// StringArray 以 JSON 文字存放的字串陣列
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported StringArray source %T", value)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// InventoryItem 使用者庫存
type InventoryItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Quantity  float64   `gorm:"not null;default:0" json:"quantity"`
	Unit      string    `gorm:"size:32;not null" json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry 轉為比對用的庫存項目
func (i InventoryItem) Entry() common.InventoryEntry {
	return common.InventoryEntry{ID: i.ID, Name: i.Name, Quantity: i.Quantity, Unit: i.Unit}
}

// Entries 批次轉換
func Entries(items []InventoryItem) []common.InventoryEntry {
	entries := make([]common.InventoryEntry, len(items))
	for i, item := range items {
		entries[i] = item.Entry()
	}
	return entries
}

// SavedVideo 使用者收藏的影片與抽取出的食譜
type SavedVideo struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	UserID       string      `gorm:"size:64;not null;uniqueIndex:idx_user_video" json:"-"`
	VideoID      string      `gorm:"size:32;not null;uniqueIndex:idx_user_video" json:"video_id"`
	Title        string      `gorm:"size:255" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	ChannelTitle string      `gorm:"size:255" json:"channel_title"`
	Thumbnail    string      `gorm:"size:512" json:"thumbnail"`
	Ingredients  StringArray `gorm:"type:text;not null;default:'[]'" json:"ingredients"`
	Steps        StringArray `gorm:"type:text;not null;default:'[]'" json:"steps"`
	Servings     *string     `gorm:"size:64" json:"servings"`
	CookingTime  *string     `gorm:"size:64" json:"cooking_time"`
	AnalyzedAt   *time.Time  `json:"analyzed_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Analyzed 是否已有抽取結果
func (v *SavedVideo) Analyzed() bool {
	return v.AnalyzedAt != nil
}

// Info 影片中繼資料
func (v *SavedVideo) Info() common.VideoInfo {
	return common.VideoInfo{
		VideoID:      v.VideoID,
		Title:        v.Title,
		Description:  v.Description,
		ChannelTitle: v.ChannelTitle,
		Thumbnail:    v.Thumbnail,
	}
}

// Recipe 已儲存的食譜；尚未分析時回傳 nil
func (v *SavedVideo) Recipe() *common.ExtractedRecipe {
	if !v.Analyzed() {
		return nil
	}
	return &common.ExtractedRecipe{
		Title:       v.Title,
		Ingredients: append([]string{}, v.Ingredients...),
		Steps:       append([]string{}, v.Steps...),
		Servings:    optionalFromPtr(v.Servings),
		CookingTime: optionalFromPtr(v.CookingTime),
		Description: v.Description,
	}
}

func optionalFromPtr(p *string) common.OptionalString {
	if p == nil {
		return common.None()
	}
	return common.Some(*p)
}

// ShoppingItem 購物清單項目
type ShoppingItem struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:64;not null;index" json:"-"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Quantity      float64   `gorm:"not null;default:1" json:"quantity"`
	Unit          string    `gorm:"size:32;not null" json:"unit"`
	SourceVideoID string    `gorm:"size:32" json:"source_video_id,omitempty"`
	Checked       bool      `gorm:"not null;default:false" json:"checked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CookingSession 一次烹調紀錄
type CookingSession struct {
	ID                 string               `gorm:"primaryKey;size:36" json:"id"`
	UserID             string               `gorm:"size:64;not null;index" json:"-"`
	VideoID            string               `gorm:"size:32;not null" json:"video_id"`
	Title              string               `gorm:"size:255" json:"title"`
	ServingsMultiplier float64              `gorm:"not null;default:1" json:"servings_multiplier"`
	CookedAt           time.Time            `gorm:"not null;index" json:"cooked_at"`
	Lines              []CookingSessionLine `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"lines"`
}

// CookingSessionLine 單一食材的扣庫存紀錄
type CookingSessionLine struct {
	ID                  uint    `gorm:"primaryKey" json:"-"`
	SessionID           string  `gorm:"size:36;not null;index" json:"-"`
	Position            int     `gorm:"not null" json:"-"`
	ExtractedIngredient string  `gorm:"size:255" json:"extracted_ingredient"`
	InventoryItemID     string  `gorm:"size:36" json:"inventory_item_id,omitempty"`
	Quantity            float64 `json:"quantity"`
	Unit                string  `gorm:"size:32" json:"unit"`
	Deducted            bool    `json:"deducted"`
	Note                string  `gorm:"size:255" json:"note,omitempty"`
}
