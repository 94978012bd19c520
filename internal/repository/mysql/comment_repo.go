package mysql

import (
	"database/sql"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"
	"strings"

	"go.uber.org/zap"
)

// commentRepository 实现了 CommentRepository 接口
type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository 创建一个新的 commentRepository 实例
func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{db}
}

// Create 创建一条评论或回复
func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comments (user_id, post_id, parent_id, content, image, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query,
		comment.UserID, comment.PostID, comment.ParentID, comment.Content, comment.Image)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err),
			zap.Int("post_id", comment.PostID), zap.Any("parent_id", comment.ParentID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = int(id)
	util.Logger.Info("评论创建成功",
		zap.Int("comment_id", comment.ID), zap.Any("parent_id", comment.ParentID))
	return nil
}

// FindByID 通过ID查找评论
func (r *commentRepository) FindByID(id int) (*model.Comment, error) {
	query := `SELECT id, user_id, post_id, parent_id, content, image, created_at, updated_at
              FROM comments WHERE id = ?`
	var comment model.Comment
	var image sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&comment.ID, &comment.UserID, &comment.PostID, &comment.ParentID,
		&comment.Content, &image, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	comment.Image = image.String
	return &comment, nil
}

// Update 更新评论内容
func (r *commentRepository) Update(comment *model.Comment) error {
	query := `UPDATE comments SET content = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.Exec(query, comment.Content, comment.ID)
	if err != nil {
		util.Logger.Error("更新评论失败", zap.Error(err), zap.Int("comment_id", comment.ID))
	}
	return err
}

// Delete 删除评论及其回复
func (r *commentRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE parent_id = ?`, id); err != nil {
		util.Logger.Error("删除评论回复失败", zap.Error(err), zap.Int("comment_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.Int("comment_id", id))
		return err
	}
	return tx.Commit()
}

// ListTopLevelByPosts 批量查询多个帖子的顶层评论并按帖子分组，附带作者摘要
func (r *commentRepository) ListTopLevelByPosts(postIDs []int) (map[int][]*model.Comment, error) {
	topLevel := make(map[int][]*model.Comment)
	if len(postIDs) == 0 {
		return topLevel, nil
	}

	query := `
        SELECT c.id, c.user_id, c.post_id, c.parent_id, c.content, c.image,
               c.created_at, c.updated_at,
               u.name, u.email, u.profile_image
        FROM comments c
        JOIN users u ON c.user_id = u.id
        WHERE c.post_id IN (` + placeholders(len(postIDs)) + `) AND c.parent_id IS NULL
        ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.Query(query, intArgs(postIDs)...)
	if err != nil {
		util.Logger.Error("批量查询顶层评论失败", zap.Error(err), zap.Int("post_count", len(postIDs)))
		return nil, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		topLevel[comment.PostID] = append(topLevel[comment.PostID], comment)
	}
	return topLevel, nil
}

// ListRepliesByParents 批量查询多个顶层评论的全部回复并按父评论分组
func (r *commentRepository) ListRepliesByParents(parentIDs []int) (map[int][]*model.Comment, error) {
	replies := make(map[int][]*model.Comment)
	if len(parentIDs) == 0 {
		return replies, nil
	}

	query := `
        SELECT c.id, c.user_id, c.post_id, c.parent_id, c.content, c.image,
               c.created_at, c.updated_at,
               u.name, u.email, u.profile_image
        FROM comments c
        JOIN users u ON c.user_id = u.id
        WHERE c.parent_id IN (` + placeholders(len(parentIDs)) + `)
        ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.Query(query, intArgs(parentIDs)...)
	if err != nil {
		util.Logger.Error("批量查询回复失败", zap.Error(err), zap.Int("parent_count", len(parentIDs)))
		return nil, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, err
	}
	for _, reply := range comments {
		if reply.ParentID != nil {
			replies[*reply.ParentID] = append(replies[*reply.ParentID], reply)
		}
	}
	return replies, nil
}

func scanComments(rows *sql.Rows) ([]*model.Comment, error) {
	var comments []*model.Comment
	for rows.Next() {
		var comment model.Comment
		var user model.UserSummary
		var image, profileImage sql.NullString
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.PostID, &comment.ParentID,
			&comment.Content, &image, &comment.CreatedAt, &comment.UpdatedAt,
			&user.Name, &user.Email, &profileImage,
		)
		if err != nil {
			return nil, err
		}
		comment.Image = image.String
		user.ID = comment.UserID
		user.ProfileImageURL = profileImage.String
		comment.User = &user
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

// placeholders 生成 n 个逗号分隔的占位符
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func intArgs(ids []int) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
