package user

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

// Register 处理用户注册请求
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	user := &model.User{
		Name:  registerData.Name,
		Email: registerData.Email,
	}

	if err := h.userService.Register(user, registerData.Password); err != nil {
		errors.HandleError(c, err)
		return
	}

	token, expiresAt, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to generate token", err))
		return
	}

	errors.HandleCreated(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	}, "注册成功")
}

// Login 处理用户登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	user, err := h.userService.Login(loginData.Email, loginData.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	token, expiresAt, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to generate token", err))
		return
	}

	user.ProfileImageURL = util.FileURL(user.ProfileImage)
	errors.HandleSuccess(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	}, "登录成功")
}

// Logout 注销当前令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("user_id")
	token := c.GetString("token")
	h.userService.Logout(userID, token)
	errors.HandleSuccess(c, nil, "已成功登出")
}

// LogoutAll 注销该账号的全部会话
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := c.GetInt("user_id")
	h.userService.LogoutAll(userID)
	errors.HandleSuccess(c, nil, "已注销全部会话")
}

// RefreshToken 签发新令牌并注销旧令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userID := c.GetInt("user_id")
	oldToken := c.GetString("token")

	token, expiresAt, err := util.GenerateToken(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to generate token", err))
		return
	}
	h.userService.Logout(userID, oldToken)

	errors.HandleSuccess(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, "令牌刷新成功")
}

// RequestPasswordReset 处理密码重置请求
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var requestData struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid email", err))
		return
	}

	if err := h.userService.RequestPasswordReset(requestData.Email); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "密码重置邮件已发送")
}

// ResetPassword 处理密码重置
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var resetData struct {
		Email       string `json:"email" binding:"required,email"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&resetData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request data", err))
		return
	}

	if err := h.userService.ResetPassword(resetData.Email, resetData.Token, resetData.NewPassword); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "密码重置成功")
}
