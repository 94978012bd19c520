package friend

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// FriendHandler 处理好友关系相关的HTTP请求
type FriendHandler struct {
	friendService service.FriendServiceInterface
}

// NewFriendHandler 创建一个新的 FriendHandler 实例
func NewFriendHandler(friendService service.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService}
}

// ListFriends 返回当前用户的好友
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("user_id")
	friends, err := h.friendService.ListFriends(userID, c.Query("search"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"friends": friends}, "")
}

// Search 搜索可以添加为好友的用户
func (h *FriendHandler) Search(c *gin.Context) {
	userID := c.GetInt("user_id")
	users, err := h.friendService.Suggest(userID, c.Query("search"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"users": users}, "")
}

// Suggested 返回好友推荐
func (h *FriendHandler) Suggested(c *gin.Context) {
	userID := c.GetInt("user_id")
	users, err := h.friendService.Suggest(userID, "")
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"users": users}, "")
}

// Pending 返回收到的待处理请求
func (h *FriendHandler) Pending(c *gin.Context) {
	userID := c.GetInt("user_id")
	requests, err := h.friendService.ListPending(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"requests": requests}, "")
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID := c.GetInt("user_id")

	var requestData struct {
		ReceiverID int `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	request, err := h.friendService.SendRequest(userID, requestData.ReceiverID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleCreated(c, gin.H{"request": request}, "好友请求已发送")
}

// Accept 接受好友请求
func (h *FriendHandler) Accept(c *gin.Context) {
	userID := c.GetInt("user_id")
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid request id"))
		return
	}

	if err := h.friendService.Accept(userID, requestID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "好友请求已接受")
}

// Reject 拒绝好友请求
func (h *FriendHandler) Reject(c *gin.Context) {
	userID := c.GetInt("user_id")
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid request id"))
		return
	}

	if err := h.friendService.Reject(userID, requestID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "好友请求已拒绝")
}
