package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-pantry/internal/pkg/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store 以使用者為範圍的資料存取
type Store struct {
	db *gorm.DB
}

// New 創建資料存取層
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 底層連線，供健康檢查使用
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(what, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, common.ErrRecordNotFound)
	}
	return err
}

// ---- 庫存 ----

// ListInventory 依名稱排序列出庫存
func (s *Store) ListInventory(ctx context.Context, userID string) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetInventoryItem 取得單一庫存
func (s *Store) GetInventoryItem(ctx context.Context, userID, id string) (*InventoryItem, error) {
	var item InventoryItem
	err := s.db.WithContext(ctx).First(&item, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound("inventory item", id, err)
	}
	return &item, nil
}

// CreateInventoryItem 新增庫存
func (s *Store) CreateInventoryItem(ctx context.Context, item *InventoryItem) error {
	if err := validateInventory(item); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// UpdateInventoryItem 更新名稱、數量與單位
func (s *Store) UpdateInventoryItem(ctx context.Context, item *InventoryItem) error {
	if err := validateInventory(item); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&InventoryItem{}).
		Where("user_id = ? AND id = ?", item.UserID, item.ID).
		Updates(map[string]interface{}{
			"name":     item.Name,
			"quantity": item.Quantity,
			"unit":     item.Unit,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory item %s: %w", item.ID, common.ErrRecordNotFound)
	}
	return nil
}

// DeleteInventoryItem 刪除庫存
func (s *Store) DeleteInventoryItem(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Delete(&InventoryItem{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("inventory item %s: %w", id, common.ErrRecordNotFound)
	}
	return nil
}

// AdjustQuantity 增減庫存數量，結果不低於 0
func (s *Store) AdjustQuantity(ctx context.Context, userID, id string, delta float64) (*InventoryItem, error) {
	var item *InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = adjustQuantity(tx, userID, id, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func adjustQuantity(tx *gorm.DB, userID, id string, delta float64) (*InventoryItem, error) {
	var item InventoryItem
	if err := tx.First(&item, "user_id = ? AND id = ?", userID, id).Error; err != nil {
		return nil, notFound("inventory item", id, err)
	}

	item.Quantity += delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	if err := tx.Model(&item).Update("quantity", item.Quantity).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func validateInventory(item *InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Unit = strings.TrimSpace(item.Unit)
	switch {
	case item.UserID == "":
		return common.NewValidationError("user id is required")
	case item.Name == "":
		return common.NewValidationError("name is required")
	case item.Quantity < 0:
		return common.NewValidationError("quantity must not be negative")
	}
	if item.Unit == "" {
		item.Unit = "個"
	}
	return nil
}

// ---- 影片與食譜 ----

// SaveVideo 收藏影片；已存在時只更新中繼資料，保留既有的抽取結果
func (s *Store) SaveVideo(ctx context.Context, userID string, info common.VideoInfo) (*SavedVideo, error) {
	var video SavedVideo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&video, "user_id = ? AND video_id = ?", userID, info.VideoID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			video = SavedVideo{
				ID:           uuid.NewString(),
				UserID:       userID,
				VideoID:      info.VideoID,
				Title:        info.Title,
				Description:  info.Description,
				ChannelTitle: info.ChannelTitle,
				Thumbnail:    info.Thumbnail,
			}
			return tx.Create(&video).Error
		case err != nil:
			return err
		}

		video.Title = info.Title
		video.Description = info.Description
		video.ChannelTitle = info.ChannelTitle
		video.Thumbnail = info.Thumbnail
		return tx.Model(&video).Updates(map[string]interface{}{
			"title":         video.Title,
			"description":   video.Description,
			"channel_title": video.ChannelTitle,
			"thumbnail":     video.Thumbnail,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ListVideos 依收藏時間由新到舊列出
func (s *Store) ListVideos(ctx context.Context, userID string) ([]SavedVideo, error) {
	var videos []SavedVideo
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

// GetVideo 取得收藏的影片
func (s *Store) GetVideo(ctx context.Context, userID, videoID string) (*SavedVideo, error) {
	var video SavedVideo
	err := s.db.WithContext(ctx).First(&video, "user_id = ? AND video_id = ?", userID, videoID).Error
	if err != nil {
		return nil, notFound("video", videoID, err)
	}
	return &video, nil
}

// SaveRecipe 寫入抽取結果
func (s *Store) SaveRecipe(ctx context.Context, userID, videoID string, recipe *common.ExtractedRecipe) error {
	if recipe == nil {
		return common.NewValidationError("recipe is required")
	}

	now := time.Now()
	result := s.db.WithContext(ctx).Model(&SavedVideo{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Updates(map[string]interface{}{
			"ingredients":  StringArray(recipe.Ingredients),
			"steps":        StringArray(recipe.Steps),
			"servings":     recipe.Servings.Ptr(),
			"cooking_time": recipe.CookingTime.Ptr(),
			"analyzed_at":  &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("video %s: %w", videoID, common.ErrRecordNotFound)
	}
	return nil
}

// DeleteVideo 取消收藏
func (s *Store) DeleteVideo(ctx context.Context, userID, videoID string) error {
	result := s.db.WithContext(ctx).Delete(&SavedVideo{}, "user_id = ? AND video_id = ?", userID, videoID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("video %s: %w", videoID, common.ErrRecordNotFound)
	}
	return nil
}

// ---- 購物清單 ----

// AddShoppingItems 加入購物清單；同名同單位且未勾選的項目合併數量
func (s *Store) AddShoppingItems(ctx context.Context, userID string, items []ShoppingItem) ([]ShoppingItem, error) {
	saved := make([]ShoppingItem, 0, len(items))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			item.Name = strings.TrimSpace(item.Name)
			if item.Name == "" {
				continue
			}
			if item.Quantity <= 0 {
				item.Quantity = 1
			}

			var existing ShoppingItem
			err := tx.First(&existing,
				"user_id = ? AND name = ? AND unit = ? AND checked = ?", userID, item.Name, item.Unit, false).Error
			switch {
			case err == nil:
				existing.Quantity += item.Quantity
				if err := tx.Model(&existing).Update("quantity", existing.Quantity).Error; err != nil {
					return err
				}
				saved = append(saved, existing)
			case errors.Is(err, gorm.ErrRecordNotFound):
				item.ID = uuid.NewString()
				item.UserID = userID
				item.Checked = false
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				saved = append(saved, item)
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListShoppingItems 未勾選的排在前面
func (s *Store) ListShoppingItems(ctx context.Context, userID string) ([]ShoppingItem, error) {
	var items []ShoppingItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checked ASC").
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SetShoppingItemChecked 勾選或取消勾選
func (s *Store) SetShoppingItemChecked(ctx context.Context, userID, id string, checked bool) (*ShoppingItem, error) {
	result := s.db.WithContext(ctx).Model(&ShoppingItem{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("checked", checked)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("shopping item %s: %w", id, common.ErrRecordNotFound)
	}

	var item ShoppingItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound("shopping item", id, err)
	}
	return &item, nil
}

// DeleteShoppingItem 移除購物清單項目
func (s *Store) DeleteShoppingItem(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).Delete(&ShoppingItem{}, "user_id = ? AND id = ?", userID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shopping item %s: %w", id, common.ErrRecordNotFound)
	}
	return nil
}

// ---- 烹調紀錄 ----

// CreateCookingSession 在同一個交易中寫入紀錄並扣除 Deducted 行的庫存
func (s *Store) CreateCookingSession(ctx context.Context, session *CookingSession) error {
	if session.UserID == "" {
		return common.NewValidationError("user id is required")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CookedAt.IsZero() {
		session.CookedAt = time.Now()
	}
	for i := range session.Lines {
		session.Lines[i].Position = i
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range session.Lines {
			if !line.Deducted || line.InventoryItemID == "" {
				continue
			}
			if _, err := adjustQuantity(tx, session.UserID, line.InventoryItemID, -line.Quantity); err != nil {
				return err
			}
		}
		return tx.Create(session).Error
	})
}

// ListCookingSessions 依時間由新到舊列出
func (s *Store) ListCookingSessions(ctx context.Context, userID string) ([]CookingSession, error) {
	var sessions []CookingSession
	if err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("cooked_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
