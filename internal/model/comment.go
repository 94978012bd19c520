package model

import "time"

// Comment 结构体表示评论模型，ParentID 为空表示顶层评论
type Comment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PostID    int       `json:"post_id"`
	ParentID  *int      `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 视图字段，由服务层批量填充
	User            *UserSummary   `json:"user,omitempty"`
	LikesCount      int            `json:"likes_count"`
	IsLiked         bool           `json:"is_liked"`
	CurrentReaction *string        `json:"current_reaction"`
	Reactions       map[string]int `json:"reactions"`
	Replies         []*Comment     `json:"replies,omitempty"`
}
