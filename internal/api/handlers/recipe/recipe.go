package recipe

import (
	"net/http"
	"strconv"
	"strings"

	"recipe-pantry/internal/api/handlers/respond"
	"recipe-pantry/internal/api/middleware"
	recipeService "recipe-pantry/internal/core/recipe"
	"recipe-pantry/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxParseLines = 200

// ExtractRequest 以影片標題與說明抽取食譜；兩者至少要有一個，由抽取器檢查
type ExtractRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channel_title"`
}

// MatchRequest 以食材行比對呼叫者的庫存
type MatchRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// ParseRequest 解析食材行
type ParseRequest struct {
	Lines []string `json:"lines" binding:"required"`
}

// ParseResponse 解析結果
type ParseResponse struct {
	Lines []common.ParsedIngredientLine `json:"lines"`
}

// SaveVideoRequest 收藏影片；title/description 有值時不查 YouTube
type SaveVideoRequest struct {
	URLOrID      string `json:"url_or_id" binding:"required"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	ChannelTitle string `json:"channel_title,omitempty"`
}

// Handler 食譜與影片相關的處理器
type Handler struct {
	service *recipeService.PantryService
}

// NewHandler 創建新的處理器
func NewHandler(service *recipeService.PantryService) *Handler {
	return &Handler{service: service}
}

// ExtractRecipe 無狀態抽取，不寫入資料庫
func (h *Handler) ExtractRecipe(c *gin.Context) {
	requestID := respond.RequestID(c)

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	common.LogInfo("收到食譜抽取請求",
		zap.String("request_id", requestID),
		zap.String("title", req.Title),
		zap.Int("description_length", len(req.Description)),
	)

	recipe, err := h.service.ExtractRecipe(c.Request.Context(), common.VideoInfo{
		Title:        req.Title,
		Description:  req.Description,
		ChannelTitle: req.ChannelTitle,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// MatchIngredients 比對任意食材行與目前庫存
func (h *Handler) MatchIngredients(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := h.service.MatchLines(c.Request.Context(), middleware.UserID(c), req.Ingredients)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ParseIngredients 將食材行解析為名稱、數量、單位
func (h *Handler) ParseIngredients(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	if len(req.Lines) > maxParseLines {
		respond.Error(c, common.NewValidationError("too many lines (max "+strconv.Itoa(maxParseLines)+")"))
		return
	}

	resp := ParseResponse{Lines: make([]common.ParsedIngredientLine, len(req.Lines))}
	for i, line := range req.Lines {
		resp.Lines[i] = recipeService.ParseIngredientLine(line)
	}
	c.JSON(http.StatusOK, resp)
}

// ListVideos 列出收藏的影片
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.service.Store().ListVideos(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// SaveVideo 收藏影片
func (h *Handler) SaveVideo(c *gin.Context) {
	var req SaveVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}

	video, err := h.service.SaveVideo(c.Request.Context(), middleware.UserID(c), recipeService.SaveVideoRequest{
		URLOrID:      req.URLOrID,
		Title:        req.Title,
		Description:  req.Description,
		ChannelTitle: req.ChannelTitle,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// DeleteVideo 取消收藏
func (h *Handler) DeleteVideo(c *gin.Context) {
	if err := h.service.DeleteVideo(c.Request.Context(), middleware.UserID(c), c.Param("videoId")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AnalyzeVideo 抽取並儲存影片食譜；force=true 時略過快取與既有結果
func (h *Handler) AnalyzeVideo(c *gin.Context) {
	force, _ := strconv.ParseBool(strings.TrimSpace(c.Query("force")))

	common.LogInfo("收到影片分析請求",
		zap.String("request_id", respond.RequestID(c)),
		zap.String("video_id", c.Param("videoId")),
		zap.Bool("force", force),
	)

	result, err := h.service.AnalyzeVideo(c.Request.Context(), middleware.UserID(c), c.Param("videoId"), force)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MatchVideo 比對已分析影片與庫存
func (h *Handler) MatchVideo(c *gin.Context) {
	result, err := h.service.MatchVideo(c.Request.Context(), middleware.UserID(c), c.Param("videoId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RankedRecipes 依可做程度排序收藏的影片
func (h *Handler) RankedRecipes(c *gin.Context) {
	scores, err := h.service.RankVideos(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": scores})
}
