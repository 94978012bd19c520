package mysql

import (
	"database/sql"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"
	"time"

	"go.uber.org/zap"
)

// postRepository 实现了 PostRepository 接口
type postRepository struct {
	db *sql.DB
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db}
}

// Create 创建一条新帖子
func (r *postRepository) Create(post *model.Post) error {
	query := `INSERT INTO posts (user_id, content, image, privacy, created_at, updated_at)
              VALUES (?, ?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, post.UserID, post.Content, post.Image, post.Privacy)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err), zap.Int("user_id", post.UserID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = int(id)
	post.CreatedAt = time.Now()
	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID))
	return nil
}

// FindByID 通过ID查找帖子，附带作者摘要
func (r *postRepository) FindByID(id int) (*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.content, p.image, p.privacy, p.created_at, p.updated_at,
               u.name, u.email, u.profile_image
        FROM posts p
        JOIN users u ON p.user_id = u.id
        WHERE p.id = ?`

	var post model.Post
	var user model.UserSummary
	var image, profileImage sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&post.ID, &post.UserID, &post.Content, &image, &post.Privacy,
		&post.CreatedAt, &post.UpdatedAt,
		&user.Name, &user.Email, &profileImage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	post.Image = image.String
	user.ID = post.UserID
	user.ProfileImageURL = profileImage.String
	post.User = &user
	return &post, nil
}

// Update 更新帖子内容、图片与可见性
func (r *postRepository) Update(post *model.Post) error {
	query := `UPDATE posts SET content = ?, image = ?, privacy = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.Exec(query, post.Content, post.Image, post.Privacy, post.ID)
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.Int("post_id", post.ID))
		return err
	}
	return nil
}

// Delete 删除帖子，评论与反应由外键级联清理
func (r *postRepository) Delete(id int) error {
	query := `DELETE FROM posts WHERE id = ?`
	_, err := r.db.Exec(query, id)
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}
	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

// ListVisible 返回对 viewer 可见的帖子页，按 (created_at, id) 降序键集分页
func (r *postRepository) ListVisible(viewerID int, cursorTime time.Time, cursorID int, limit int) ([]*model.Post, error) {
	query := `
        SELECT p.id, p.user_id, p.content, p.image, p.privacy, p.created_at, p.updated_at,
               u.name, u.email, u.profile_image
        FROM posts p
        JOIN users u ON p.user_id = u.id
        WHERE (p.privacy = ? OR p.user_id = ?)`
	args := []interface{}{model.PrivacyPublic, viewerID}

	if cursorID > 0 {
		query += ` AND (p.created_at < ? OR (p.created_at = ? AND p.id < ?))`
		args = append(args, cursorTime, cursorTime, cursorID)
	}

	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询帖子列表失败", zap.Error(err), zap.Int("viewer_id", viewerID))
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		var post model.Post
		var user model.UserSummary
		var image, profileImage sql.NullString
		err := rows.Scan(
			&post.ID, &post.UserID, &post.Content, &image, &post.Privacy,
			&post.CreatedAt, &post.UpdatedAt,
			&user.Name, &user.Email, &profileImage,
		)
		if err != nil {
			return nil, err
		}
		post.Image = image.String
		user.ID = post.UserID
		user.ProfileImageURL = profileImage.String
		post.User = &user
		posts = append(posts, &post)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
