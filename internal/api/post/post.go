package post

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostHandler 处理帖子与信息流相关的HTTP请求
type PostHandler struct {
	postService service.PostServiceInterface
	store       storage.Storage
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(postService service.PostServiceInterface, store storage.Storage) *PostHandler {
	return &PostHandler{postService, store}
}

// ListFeed 返回一页信息流
func (h *PostHandler) ListFeed(c *gin.Context) {
	userID := c.GetInt("user_id")
	cursor := c.Query("cursor")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	page, err := h.postService.ListFeed(userID, cursor, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, page, "")
}

// GetPost 返回单个帖子及其评论树
func (h *PostHandler) GetPost(c *gin.Context) {
	userID := c.GetInt("user_id")
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid post id"))
		return
	}

	post, err := h.postService.GetPost(postID, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"post": post}, "")
}

// Create 创建帖子，multipart 表单可附带图片
func (h *PostHandler) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	content := c.PostForm("content")
	privacy := c.PostForm("privacy")

	imagePath, ok := h.uploadImage(c, userID)
	if !ok {
		return
	}

	post, err := h.postService.Create(userID, content, imagePath, privacy)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleCreated(c, gin.H{"post": post}, "帖子创建成功")
}

// Update 更新帖子，未提交 content 字段时保留原文字
func (h *PostHandler) Update(c *gin.Context) {
	userID := c.GetInt("user_id")
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid post id"))
		return
	}

	var contentPtr *string
	if content, ok := c.GetPostForm("content"); ok {
		contentPtr = &content
	}
	privacy := c.PostForm("privacy")
	removeFlag := c.PostForm("remove_image")
	removeImage := removeFlag == "1" || removeFlag == "true"

	imagePath, ok := h.uploadImage(c, userID)
	if !ok {
		return
	}

	post, err := h.postService.Update(userID, postID, contentPtr, imagePath, removeImage, privacy)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"post": post}, "帖子更新成功")
}

// Delete 删除帖子
func (h *PostHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid post id"))
		return
	}

	if err := h.postService.Delete(userID, postID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "帖子删除成功")
}

// uploadImage 保存 multipart 表单中的图片，返回存储路径
// 第二个返回值为 false 时已写入错误响应
func (h *PostHandler) uploadImage(c *gin.Context, userID int) (string, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", true
	}

	if !util.ValidateImageFile(file) {
		errors.HandleError(c, errors.New(errors.ErrValidation,
			"image must be jpeg, png, gif or webp and at most 5MB"))
		return "", false
	}

	path := "posts/" + util.GenerateUniqueFilename(file.Filename)
	stored, err := h.store.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传帖子图片失败", zap.Error(err), zap.Int("user_id", userID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to upload image", err))
		return "", false
	}
	return stored, true
}
