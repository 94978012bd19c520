package user

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	userService service.UserServiceInterface
	store       storage.Storage
}

// NewProfileHandler 创建一个新的 ProfileHandler 实例
func NewProfileHandler(userService service.UserServiceInterface, store storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, store}
}

// GetCurrentUser 返回当前登录用户的信息
func (h *ProfileHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetInt("user_id")

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	user.ProfileImageURL = util.FileURL(user.ProfileImage)
	errors.HandleSuccess(c, gin.H{"user": user}, "")
}

// UpdateProfile 更新用户资料，multipart 表单可附带头像
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	name := c.PostForm("name")
	email := c.PostForm("email")

	var imagePath string
	if file, err := c.FormFile("profile_image"); err == nil {
		if !util.ValidateImageFile(file) {
			errors.HandleError(c, errors.New(errors.ErrValidation,
				"profile image must be jpeg, png, gif or webp and at most 5MB"))
			return
		}
		path := "avatars/" + util.GenerateUniqueFilename(file.Filename)
		imagePath, err = h.store.UploadFile(file, path)
		if err != nil {
			util.Logger.Error("上传头像失败", zap.Error(err), zap.Int("user_id", userID))
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to upload image", err))
			return
		}
	}

	user, err := h.userService.UpdateProfile(userID, name, email, imagePath)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	user.ProfileImageURL = util.FileURL(user.ProfileImage)
	errors.HandleSuccess(c, gin.H{"user": user}, "资料更新成功")
}

// UpdatePassword 更新当前用户密码
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	userID := c.GetInt("user_id")

	var passwordData struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&passwordData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	if err := h.userService.UpdatePassword(userID, passwordData.CurrentPassword, passwordData.NewPassword); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "密码更新成功")
}
