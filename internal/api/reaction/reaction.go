package reaction

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ReactionHandler 处理反应相关的HTTP请求
type ReactionHandler struct {
	reactionService service.ReactionServiceInterface
}

// NewReactionHandler 创建一个新的 ReactionHandler 实例
func NewReactionHandler(reactionService service.ReactionServiceInterface) *ReactionHandler {
	return &ReactionHandler{reactionService}
}

// Toggle 切换当前用户对目标的反应
func (h *ReactionHandler) Toggle(c *gin.Context) {
	userID := c.GetInt("user_id")

	var toggleData struct {
		LikeableType string `json:"likeable_type" binding:"required"`
		LikeableID   int    `json:"likeable_id" binding:"required"`
		ReactionType string `json:"reaction_type" binding:"required,reaction_kind"`
	}

	if err := c.ShouldBindJSON(&toggleData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	summary, err := h.reactionService.Toggle(userID, toggleData.LikeableType, toggleData.LikeableID, toggleData.ReactionType)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, summary, "")
}

// List 返回目标的全部反应记录
func (h *ReactionHandler) List(c *gin.Context) {
	targetType := c.Query("likeable_type")
	targetID, err := strconv.Atoi(c.Query("likeable_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid likeable id"))
		return
	}

	reactions, err := h.reactionService.GetReactors(targetType, targetID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"reactions": reactions}, "")
}
