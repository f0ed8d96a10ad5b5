package pantry

import (
	"errors"
	"io"
	"net/http"

	"recipe-pantry/internal/api/handlers/respond"
	"recipe-pantry/internal/api/middleware"
	recipeService "recipe-pantry/internal/core/recipe"
	"recipe-pantry/internal/infrastructure/store"
	"recipe-pantry/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InventoryRequest 新增或更新庫存
type InventoryRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
}

// CheckRequest 勾選購物清單項目
type CheckRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

// CookRequest 記錄一次烹調
type CookRequest struct {
	ServingsMultiplier float64 `json:"servings_multiplier"`
}

// Handler 庫存、購物清單與烹調紀錄
type Handler struct {
	service *recipeService.PantryService
}

// NewHandler 創建新的處理器
func NewHandler(service *recipeService.PantryService) *Handler {
	return &Handler{service: service}
}

func (r InventoryRequest) item(userID string) *store.InventoryItem {
	item := &store.InventoryItem{
		UserID: userID,
		Name:   r.Name,
		Unit:   r.Unit,
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
	return item
}

// ListInventory 列出庫存
func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.service.Store().ListInventory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateInventory 新增庫存項目
func (h *Handler) CreateInventory(c *gin.Context) {
	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	item := req.item(middleware.UserID(c))
	if err := h.service.Store().CreateInventoryItem(c.Request.Context(), item); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateInventory 更新庫存項目
func (h *Handler) UpdateInventory(c *gin.Context) {
	var req InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	item := req.item(middleware.UserID(c))
	item.ID = c.Param("id")
	if err := h.service.Store().UpdateInventoryItem(c.Request.Context(), item); err != nil {
		respond.Error(c, err)
		return
	}

	updated, err := h.service.Store().GetInventoryItem(c.Request.Context(), item.UserID, item.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteInventory 刪除庫存項目
func (h *Handler) DeleteInventory(c *gin.Context) {
	if err := h.service.Store().DeleteInventoryItem(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BuildShoppingList 把影片缺少的食材加入購物清單
func (h *Handler) BuildShoppingList(c *gin.Context) {
	items, err := h.service.BuildShoppingList(c.Request.Context(), middleware.UserID(c), c.Param("videoId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListShoppingItems 列出購物清單
func (h *Handler) ListShoppingItems(c *gin.Context) {
	items, err := h.service.Store().ListShoppingItems(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CheckShoppingItem 勾選或取消勾選
func (h *Handler) CheckShoppingItem(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	item, err := h.service.Store().SetShoppingItemChecked(c.Request.Context(), middleware.UserID(c), c.Param("id"), *req.Checked)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteShoppingItem 刪除購物清單項目
func (h *Handler) DeleteShoppingItem(c *gin.Context) {
	if err := h.service.Store().DeleteShoppingItem(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cook 記錄烹調並扣除庫存；body 可省略
func (h *Handler) Cook(c *gin.Context) {
	var req CookRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(c, err)
		return
	}

	session, err := h.service.Cook(c.Request.Context(), middleware.UserID(c), c.Param("videoId"), req.ServingsMultiplier)
	if err != nil {
		respond.Error(c, err)
		return
	}

	common.LogInfo("烹調紀錄已建立",
		zap.String("request_id", respond.RequestID(c)),
		zap.String("session_id", session.ID),
		zap.Int("lines", len(session.Lines)),
	)
	c.JSON(http.StatusCreated, session)
}

// ListCookingSessions 列出烹調紀錄
func (h *Handler) ListCookingSessions(c *gin.Context) {
	sessions, err := h.service.Store().ListCookingSessions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
