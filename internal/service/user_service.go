package service

import (
	"fmt"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/repository/interfaces"
	"socialfeed-backend/internal/util"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxFailedLoginAttempts 连续失败次数达到该值后锁定账号
	MaxFailedLoginAttempts = 5
	// LockoutDuration 账号锁定时长
	LockoutDuration = 30 * time.Minute
	// ResetTokenTTL 密码重置令牌有效期
	ResetTokenTTL = time.Hour
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo     interfaces.UserRepository
	emailService *EmailService

	// 单令牌黑名单与按账号的撤销水位线，二者共同实现注销
	tokenBlacklist map[string]time.Time
	revokedBefore  map[int]time.Time
	blacklistMutex sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository, emailService *EmailService) *UserService {
	return &UserService{
		userRepo:       userRepo,
		emailService:   emailService,
		tokenBlacklist: make(map[string]time.Time),
		revokedBefore:  make(map[int]time.Time),
	}
}

// Register 注册新用户
func (s *UserService) Register(user *model.User, password string) error {
	existing, err := s.userRepo.FindByEmail(user.Email)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check email", err)
	}
	if existing != nil {
		return errors.New(errors.ErrUserExists, "email already registered")
	}

	if !util.IsPasswordStrong(password) {
		return errors.New(errors.ErrWeakPassword,
			"password must be at least 8 characters and contain lowercase, uppercase, digit and symbol")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to hash password", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to create user", err)
	}

	util.Logger.Info("用户注册成功", zap.Int("user_id", user.ID))
	return nil
}

// Login 用户登录，连续失败会触发账号锁定
func (s *UserService) Login(email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		remaining := int(time.Until(*user.LockedUntil).Minutes()) + 1
		util.Logger.Warn("锁定账号尝试登录",
			zap.Int("user_id", user.ID), zap.Int("remaining_minutes", remaining))
		return nil, errors.New(errors.ErrAccountLocked,
			fmt.Sprintf("account is locked, try again in %d minutes", remaining))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= MaxFailedLoginAttempts {
			lockedUntil := time.Now().Add(LockoutDuration)
			user.LockedUntil = &lockedUntil
			util.Logger.Warn("账号因连续登录失败被锁定", zap.Int("user_id", user.ID))
		}
		if err := s.userRepo.UpdateSecurity(user); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to record login failure", err)
		}
		if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
			return nil, errors.New(errors.ErrAccountLocked,
				"account is locked due to too many failed attempts, try again later")
		}
		return nil, errors.New(errors.ErrInvalidCredentials, "invalid email or password")
	}

	// 登录成功，清除失败计数与锁定
	now := time.Now()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateSecurity(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to record login", err)
	}

	util.Logger.Info("用户登录成功", zap.Int("user_id", user.ID))
	return user, nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile 更新用户资料，email 改动会检查唯一性
func (s *UserService) UpdateProfile(userID int, name, email, profileImage string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if email != "" && email != user.Email {
		existing, err := s.userRepo.FindByEmail(email)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to check email", err)
		}
		if existing != nil {
			return nil, errors.New(errors.ErrUserExists, "email already registered")
		}
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}
	if profileImage != "" {
		user.ProfileImage = profileImage
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update user", err)
	}
	util.Logger.Info("用户资料更新成功", zap.Int("user_id", user.ID))
	return user, nil
}

// UpdatePassword 校验当前密码后更新密码
func (s *UserService) UpdatePassword(userID int, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.New(errors.ErrInvalidCredentials, "current password is incorrect")
	}
	if !util.IsPasswordStrong(newPassword) {
		return errors.New(errors.ErrWeakPassword,
			"password must be at least 8 characters and contain lowercase, uppercase, digit and symbol")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to hash password", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.UpdateSecurity(user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to update password", err)
	}
	util.Logger.Info("用户密码更新成功", zap.Int("user_id", userID))
	return nil
}

// RequestPasswordReset 生成一次性重置令牌并发送邮件
// 数据库只保存令牌哈希，明文仅出现在邮件中
func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to find user", err)
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to generate reset token", err)
	}
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to hash reset token", err)
	}

	expiresAt := time.Now().Add(ResetTokenTTL)
	user.ResetTokenHash = string(tokenHash)
	user.ResetTokenExpiresAt = &expiresAt
	if err := s.userRepo.UpdateSecurity(user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to store reset token", err)
	}

	s.emailService.SendPasswordResetEmail(user.Email, user.Name, token)
	util.Logger.Info("密码重置邮件已发送", zap.Int("user_id", user.ID))
	return nil
}

// ResetPassword 校验重置令牌后设置新密码，同时清除锁定状态
func (s *UserService) ResetPassword(email, token, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to find user", err)
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	if user.ResetTokenHash == "" || user.ResetTokenExpiresAt == nil ||
		user.ResetTokenExpiresAt.Before(time.Now()) {
		return errors.New(errors.ErrInvalidToken, "reset token is invalid or expired")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.ResetTokenHash), []byte(token)); err != nil {
		return errors.New(errors.ErrInvalidToken, "reset token is invalid or expired")
	}

	if !util.IsPasswordStrong(newPassword) {
		return errors.New(errors.ErrWeakPassword,
			"password must be at least 8 characters and contain lowercase, uppercase, digit and symbol")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to hash password", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	if err := s.userRepo.UpdateSecurity(user); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to reset password", err)
	}

	// 密码重置后撤销该账号的全部已签发令牌
	s.revokeAll(user.ID)
	util.Logger.Info("密码重置成功", zap.Int("user_id", user.ID))
	return nil
}

// Logout 将当前令牌加入黑名单直至其自然过期
func (s *UserService) Logout(userID int, token string) {
	s.blacklistMutex.Lock()
	s.tokenBlacklist[token] = time.Now().Add(util.TokenTTL)
	s.blacklistMutex.Unlock()
	util.Logger.Info("用户注销，令牌已加入黑名单", zap.Int("user_id", userID))
}

// LogoutAll 撤销该账号此刻之前签发的全部令牌
func (s *UserService) LogoutAll(userID int) {
	s.revokeAll(userID)
	util.Logger.Info("用户注销全部会话", zap.Int("user_id", userID))
}

func (s *UserService) revokeAll(userID int) {
	s.blacklistMutex.Lock()
	s.revokedBefore[userID] = time.Now()
	s.blacklistMutex.Unlock()
}

// IsTokenRevoked 判断令牌是否已被单独注销或被账号级撤销覆盖
func (s *UserService) IsTokenRevoked(token string, userID int, issuedAt time.Time) bool {
	s.blacklistMutex.RLock()
	expiry, blacklisted := s.tokenBlacklist[token]
	watermark, hasWatermark := s.revokedBefore[userID]
	s.blacklistMutex.RUnlock()

	if blacklisted {
		if time.Now().After(expiry) {
			s.blacklistMutex.Lock()
			delete(s.tokenBlacklist, token)
			s.blacklistMutex.Unlock()
		} else {
			return true
		}
	}
	if hasWatermark && issuedAt.Before(watermark) {
		return true
	}
	return false
}

type UserServiceInterface interface {
	Register(user *model.User, password string) error
	Login(email, password string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateProfile(userID int, name, email, profileImage string) (*model.User, error)
	UpdatePassword(userID int, currentPassword, newPassword string) error
	RequestPasswordReset(email string) error
	ResetPassword(email, token, newPassword string) error
	Logout(userID int, token string)
	LogoutAll(userID int)
	IsTokenRevoked(token string, userID int, issuedAt time.Time) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
