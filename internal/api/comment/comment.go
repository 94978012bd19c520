package comment

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommentHandler 处理评论相关的HTTP请求
type CommentHandler struct {
	commentService service.CommentServiceInterface
	store          storage.Storage
}

// NewCommentHandler 创建一个新的 CommentHandler 实例
func NewCommentHandler(commentService service.CommentServiceInterface, store storage.Storage) *CommentHandler {
	return &CommentHandler{commentService, store}
}

// ListByPost 返回帖子的两层评论树
func (h *CommentHandler) ListByPost(c *gin.Context) {
	userID := c.GetInt("user_id")
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid post id"))
		return
	}

	comments, err := h.commentService.BuildTree(postID, userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"comments": comments}, "")
}

// Create 创建评论或回复，multipart 表单可附带图片
func (h *CommentHandler) Create(c *gin.Context) {
	userID := c.GetInt("user_id")

	postID, err := strconv.Atoi(c.PostForm("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid post id"))
		return
	}

	var parentID *int
	if raw := c.PostForm("parent_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			errors.HandleError(c, errors.New(errors.ErrValidation, "invalid parent id"))
			return
		}
		parentID = &id
	}

	content := c.PostForm("content")

	var imagePath string
	if file, err := c.FormFile("image"); err == nil {
		if !util.ValidateImageFile(file) {
			errors.HandleError(c, errors.New(errors.ErrValidation,
				"image must be jpeg, png, gif or webp and at most 5MB"))
			return
		}
		path := "comments/" + util.GenerateUniqueFilename(file.Filename)
		imagePath, err = h.store.UploadFile(file, path)
		if err != nil {
			util.Logger.Error("上传评论图片失败", zap.Error(err), zap.Int("user_id", userID))
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to upload image", err))
			return
		}
	}

	comment, err := h.commentService.Create(userID, postID, parentID, content, imagePath)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleCreated(c, gin.H{"comment": comment}, "评论创建成功")
}

// Update 更新评论内容
func (h *CommentHandler) Update(c *gin.Context) {
	userID := c.GetInt("user_id")
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid comment id"))
		return
	}

	var updateData struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	comment, err := h.commentService.Update(userID, commentID, updateData.Content)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"comment": comment}, "评论更新成功")
}

// Delete 删除评论
func (h *CommentHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")
	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrValidation, "invalid comment id"))
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "评论删除成功")
}
