package model

import "time"

// User 结构体表示用户模型
type User struct {
	ID                  int        `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"` // 密码哈希不应在JSON中暴露
	ProfileImage        string     `json:"profile_image,omitempty"`
	ProfileImageURL     string     `json:"profile_image_url,omitempty"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	ResetTokenHash      string     `json:"-"` // 密码重置令牌的哈希
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UserSummary 嵌入到帖子、评论、点赞中的作者摘要
type UserSummary struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Summary 返回用户的摘要信息
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}
