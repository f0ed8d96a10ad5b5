package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	db, err := Open(config.DatabaseConfig{Path: ":memory:", LogLevel: "silent"})
	s.Require().NoError(err)
	s.store = New(db)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(Close(s.store.DB()))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) createItem(userID, name string, qty float64, unit string) *InventoryItem {
	item := &InventoryItem{UserID: userID, Name: name, Quantity: qty, Unit: unit}
	s.Require().NoError(s.store.CreateInventoryItem(s.ctx, item))
	return item
}

func (s *StoreTestSuite) TestInventoryCRUD() {
	milk := s.createItem("alice", " 牛乳 ", 2, "本")
	s.createItem("alice", "卵", 6, "")
	s.createItem("bob", "卵", 1, "個")

	s.NotEmpty(milk.ID)
	s.Equal("牛乳", milk.Name)

	items, err := s.store.ListInventory(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("個", items[0].Unit, "blank unit defaults to the counting unit")

	milk.Quantity = 5
	s.Require().NoError(s.store.UpdateInventoryItem(s.ctx, milk))
	got, err := s.store.GetInventoryItem(s.ctx, "alice", milk.ID)
	s.Require().NoError(err)
	s.Equal(5.0, got.Quantity)

	_, err = s.store.GetInventoryItem(s.ctx, "bob", milk.ID)
	s.True(errors.Is(err, common.ErrRecordNotFound), "items are scoped per user")

	s.Require().NoError(s.store.DeleteInventoryItem(s.ctx, "alice", milk.ID))
	err = s.store.DeleteInventoryItem(s.ctx, "alice", milk.ID)
	s.True(errors.Is(err, common.ErrRecordNotFound))
}

func (s *StoreTestSuite) TestInventoryValidation() {
	err := s.store.CreateInventoryItem(s.ctx, &InventoryItem{UserID: "alice", Name: "  "})
	s.True(common.IsValidationError(err))

	err = s.store.CreateInventoryItem(s.ctx, &InventoryItem{UserID: "alice", Name: "塩", Quantity: -1})
	s.True(common.IsValidationError(err))
}

func (s *StoreTestSuite) TestAdjustQuantityClampsAtZero() {
	item := s.createItem("alice", "玉ねぎ", 2, "個")

	updated, err := s.store.AdjustQuantity(s.ctx, "alice", item.ID, 1.5)
	s.Require().NoError(err)
	s.Equal(3.5, updated.Quantity)

	updated, err = s.store.AdjustQuantity(s.ctx, "alice", item.ID, -10)
	s.Require().NoError(err)
	s.Equal(0.0, updated.Quantity)

	_, err = s.store.AdjustQuantity(s.ctx, "alice", "missing", 1)
	s.True(errors.Is(err, common.ErrRecordNotFound))
}

func (s *StoreTestSuite) TestVideosAndRecipes() {
	info := common.VideoInfo{VideoID: "abc123def45", Title: "肉じゃが", Description: "材料..."}

	video, err := s.store.SaveVideo(s.ctx, "alice", info)
	s.Require().NoError(err)
	s.False(video.Analyzed())
	s.Nil(video.Recipe())

	recipe := &common.ExtractedRecipe{
		Ingredients: []string{"じゃがいも 3個"},
		Steps:       []string{"煮る"},
		Servings:    common.Some("2人分"),
	}
	s.Require().NoError(s.store.SaveRecipe(s.ctx, "alice", info.VideoID, recipe))

	// 重新收藏只更新中繼資料
	info.Title = "肉じゃが（改）"
	_, err = s.store.SaveVideo(s.ctx, "alice", info)
	s.Require().NoError(err)

	got, err := s.store.GetVideo(s.ctx, "alice", info.VideoID)
	s.Require().NoError(err)
	s.True(got.Analyzed())
	s.Equal("肉じゃが（改）", got.Title)

	stored := got.Recipe()
	s.Require().NotNil(stored)
	s.Equal([]string{"じゃがいも 3個"}, stored.Ingredients)
	s.Equal([]string{"煮る"}, stored.Steps)
	s.Equal(common.Some("2人分"), stored.Servings)
	s.False(stored.CookingTime.Valid)

	videos, err := s.store.ListVideos(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(videos, 1)

	err = s.store.SaveRecipe(s.ctx, "bob", info.VideoID, recipe)
	s.True(errors.Is(err, common.ErrRecordNotFound))

	s.Require().NoError(s.store.DeleteVideo(s.ctx, "alice", info.VideoID))
	_, err = s.store.GetVideo(s.ctx, "alice", info.VideoID)
	s.True(errors.Is(err, common.ErrRecordNotFound))
}

func (s *StoreTestSuite) TestShoppingList() {
	saved, err := s.store.AddShoppingItems(s.ctx, "alice", []ShoppingItem{
		{Name: "牛乳", Quantity: 200, Unit: "ml"},
		{Name: "  ", Quantity: 1, Unit: "個"},
		{Name: "卵", Quantity: 0, Unit: "個"},
	})
	s.Require().NoError(err)
	s.Require().Len(saved, 2)
	s.Equal(1.0, saved[1].Quantity, "non-positive quantity becomes 1")

	// 同名同單位合併
	_, err = s.store.AddShoppingItems(s.ctx, "alice", []ShoppingItem{{Name: "牛乳", Quantity: 100, Unit: "ml"}})
	s.Require().NoError(err)

	items, err := s.store.ListShoppingItems(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	byName := map[string]ShoppingItem{}
	for _, item := range items {
		byName[item.Name] = item
	}
	s.Equal(300.0, byName["牛乳"].Quantity)

	checked, err := s.store.SetShoppingItemChecked(s.ctx, "alice", byName["牛乳"].ID, true)
	s.Require().NoError(err)
	s.True(checked.Checked)

	items, err = s.store.ListShoppingItems(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("卵", items[0].Name, "unchecked items first")

	s.Require().NoError(s.store.DeleteShoppingItem(s.ctx, "alice", items[0].ID))
	_, err = s.store.SetShoppingItemChecked(s.ctx, "alice", items[0].ID, false)
	s.True(errors.Is(err, common.ErrRecordNotFound))
}

func (s *StoreTestSuite) TestCookingSessionDepletesInventory() {
	egg := s.createItem("alice", "卵", 6, "個")
	salt := s.createItem("alice", "塩", 1, "袋")

	session := &CookingSession{
		UserID:             "alice",
		VideoID:            "abc123def45",
		Title:              "オムレツ",
		ServingsMultiplier: 1,
		Lines: []CookingSessionLine{
			{ExtractedIngredient: "卵 2個", InventoryItemID: egg.ID, Quantity: 2, Unit: "個", Deducted: true},
			{ExtractedIngredient: "塩 少々", InventoryItemID: salt.ID, Quantity: 1, Unit: "少々", Note: "unit not measurable"},
		},
	}
	s.Require().NoError(s.store.CreateCookingSession(s.ctx, session))

	got, err := s.store.GetInventoryItem(s.ctx, "alice", egg.ID)
	s.Require().NoError(err)
	s.Equal(4.0, got.Quantity)

	got, err = s.store.GetInventoryItem(s.ctx, "alice", salt.ID)
	s.Require().NoError(err)
	s.Equal(1.0, got.Quantity)

	sessions, err := s.store.ListCookingSessions(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Require().Len(sessions[0].Lines, 2)
	s.Equal("卵 2個", sessions[0].Lines[0].ExtractedIngredient)
	s.WithinDuration(time.Now(), sessions[0].CookedAt, time.Minute)
}

func (s *StoreTestSuite) TestCookingSessionRollsBack() {
	egg := s.createItem("alice", "卵", 6, "個")

	session := &CookingSession{
		UserID:  "alice",
		VideoID: "abc123def45",
		Lines: []CookingSessionLine{
			{InventoryItemID: egg.ID, Quantity: 2, Unit: "個", Deducted: true},
			{InventoryItemID: "missing", Quantity: 1, Unit: "個", Deducted: true},
		},
	}
	err := s.store.CreateCookingSession(s.ctx, session)
	s.True(errors.Is(err, common.ErrRecordNotFound))

	got, err := s.store.GetInventoryItem(s.ctx, "alice", egg.ID)
	s.Require().NoError(err)
	s.Equal(6.0, got.Quantity)

	sessions, err := s.store.ListCookingSessions(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(sessions)
}

func TestStringArray(t *testing.T) {
	var a StringArray
	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var scanned StringArray
	require.NoError(t, scanned.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.NotNil(t, scanned)
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan(42))
}
