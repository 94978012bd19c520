package model

import "time"

// 帖子可见性
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Post 结构体表示帖子模型
type Post struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Privacy   string    `json:"privacy"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 视图字段，由服务层批量填充
	User            *UserSummary   `json:"user,omitempty"`
	LikesCount      int            `json:"likes_count"`
	IsLiked         bool           `json:"is_liked"`
	CurrentReaction *string        `json:"current_reaction"`
	Reactions       map[string]int `json:"reactions"`
	Comments        []*Comment     `json:"comments"`
}
