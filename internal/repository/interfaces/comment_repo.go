package interfaces

import "socialfeed-backend/internal/model"

// CommentRepository 定义了评论相关的数据库操作接口
type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id int) (*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id int) error
	// ListTopLevelByPosts 批量返回多个帖子的顶层评论，按帖子分组，
	// 组内最新的在前
	ListTopLevelByPosts(postIDs []int) (map[int][]*model.Comment, error)
	// ListRepliesByParents 批量返回多个顶层评论的全部回复，按父评论分组，
	// 组内最新的在前
	ListRepliesByParents(parentIDs []int) (map[int][]*model.Comment, error)
}
