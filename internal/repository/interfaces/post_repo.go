package interfaces

import (
	"socialfeed-backend/internal/model"
	"time"
)

// PostRepository 定义了帖子相关的数据库操作接口
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id int) (*model.Post, error)
	Update(post *model.Post) error
	Delete(id int) error
	// ListVisible 返回对 viewer 可见的帖子（公开或本人的），
	// 按 (created_at, id) 降序做键集分页；cursorID 为 0 表示第一页
	ListVisible(viewerID int, cursorTime time.Time, cursorID int, limit int) ([]*model.Post, error)
}
