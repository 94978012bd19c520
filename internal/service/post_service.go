package service

import (
	"fmt"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/repository/interfaces"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultFeedPageSize 信息流默认页大小
const DefaultFeedPageSize = 20

// FeedPage 一页信息流，NextCursor 为空表示没有更多
type FeedPage struct {
	Posts      []*model.Post `json:"posts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// PostService 处理帖子与信息流的业务逻辑
type PostService struct {
	postRepo       interfaces.PostRepository
	reactionRepo   interfaces.ReactionRepository
	commentService *CommentService
	store          storage.Storage
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(
	postRepo interfaces.PostRepository,
	reactionRepo interfaces.ReactionRepository,
	commentService *CommentService,
	store storage.Storage,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		reactionRepo:   reactionRepo,
		commentService: commentService,
		store:          store,
	}
}

// Create 创建帖子
func (s *PostService) Create(userID int, content, image, privacy string) (*model.Post, error) {
	if content == "" && image == "" {
		return nil, errors.New(errors.ErrValidation, "post must have content or an image")
	}
	if privacy == "" {
		privacy = model.PrivacyPublic
	}
	if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
		return nil, errors.New(errors.ErrValidation, "invalid privacy value")
	}

	post := &model.Post{
		UserID:  userID,
		Content: content,
		Image:   image,
		Privacy: privacy,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create post", err)
	}
	return s.GetPost(post.ID, userID)
}

// GetPost 返回单个帖子，私密帖子仅作者可见
func (s *PostService) GetPost(postID, viewerID int) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if post.Privacy == model.PrivacyPrivate && post.UserID != viewerID {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	if err := s.assemble([]*model.Post{post}, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

// Update 更新帖子，仅作者可以操作
// content 为 nil 时保留原文字；替换或移除图片时删除旧文件
func (s *PostService) Update(userID, postID int, content *string, image string, removeImage bool, privacy string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if post.UserID != userID {
		return nil, errors.New(errors.ErrForbidden, "only the author can edit this post")
	}

	if privacy != "" {
		if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
			return nil, errors.New(errors.ErrValidation, "invalid privacy value")
		}
		post.Privacy = privacy
	}

	if content != nil {
		post.Content = *content
	}

	oldImage := post.Image
	if removeImage {
		post.Image = ""
	}
	if image != "" {
		post.Image = image
	}

	if post.Content == "" && post.Image == "" {
		return nil, errors.New(errors.ErrValidation, "post must have content or an image")
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update post", err)
	}

	if oldImage != "" && oldImage != post.Image {
		if err := s.store.DeleteFile(oldImage); err != nil {
			util.Logger.Error("删除旧帖子图片失败", zap.Error(err), zap.String("path", oldImage))
		}
	}
	return s.GetPost(post.ID, userID)
}

// Delete 删除帖子及其图片，仅作者可以操作
func (s *PostService) Delete(userID, postID int) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to find post", err)
	}
	if post == nil {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	if post.UserID != userID {
		return errors.New(errors.ErrForbidden, "only the author can delete this post")
	}

	if err := s.postRepo.Delete(postID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete post", err)
	}
	if post.Image != "" {
		if err := s.store.DeleteFile(post.Image); err != nil {
			util.Logger.Error("删除帖子图片失败", zap.Error(err), zap.String("path", post.Image))
		}
	}
	util.Logger.Info("帖子删除成功", zap.Int("post_id", postID))
	return nil
}

// ListFeed 返回一页信息流，cursor 为空表示第一页
func (s *PostService) ListFeed(viewerID int, cursor string, limit int) (*FeedPage, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultFeedPageSize
	}

	cursorTime, cursorID, err := parseFeedCursor(cursor)
	if err != nil {
		return nil, errors.New(errors.ErrValidation, "invalid cursor")
	}

	posts, err := s.postRepo.ListVisible(viewerID, cursorTime, cursorID, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list posts", err)
	}
	if posts == nil {
		posts = []*model.Post{}
	}

	if err := s.assemble(posts, viewerID); err != nil {
		return nil, err
	}

	page := &FeedPage{Posts: posts}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		page.NextCursor = fmt.Sprintf("%d_%d", last.CreatedAt.Unix(), last.ID)
	}
	return page, nil
}

// assemble 批量填充帖子的反应数据与评论树
// 反应数据每个关注点只发一次查询，按帖子ID重新分配
func (s *PostService) assemble(posts []*model.Post, viewerID int) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]int, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	counts, err := s.reactionRepo.CountByTargets(model.TargetPost, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to count reactions", err)
	}
	breakdowns, err := s.reactionRepo.BreakdownByTargets(model.TargetPost, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load reaction breakdowns", err)
	}
	kinds, err := s.reactionRepo.FindKindsByUser(viewerID, model.TargetPost, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load viewer reactions", err)
	}

	trees, err := s.commentService.buildTreesForPosts(ids, viewerID)
	if err != nil {
		return err
	}

	for _, post := range posts {
		post.LikesCount = counts[post.ID]
		post.Reactions = breakdowns[post.ID]
		if post.Reactions == nil {
			post.Reactions = map[string]int{}
		}
		if kind, ok := kinds[post.ID]; ok {
			k := kind
			post.IsLiked = true
			post.CurrentReaction = &k
		}
		post.ImageURL = util.FileURL(post.Image)
		if post.User != nil {
			post.User.ProfileImageURL = util.FileURL(post.User.ProfileImageURL)
		}
		post.Comments = trees[post.ID]
	}
	return nil
}

// parseFeedCursor 解析 "<unix秒>_<帖子ID>" 形式的游标
func parseFeedCursor(cursor string) (time.Time, int, error) {
	if cursor == "" {
		return time.Time{}, 0, nil
	}
	parts := strings.SplitN(cursor, "_", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("malformed cursor: %s", cursor)
	}
	seconds, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, err
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, 0, err
	}
	if id <= 0 {
		return time.Time{}, 0, fmt.Errorf("malformed cursor: %s", cursor)
	}
	return time.Unix(seconds, 0), id, nil
}

type PostServiceInterface interface {
	Create(userID int, content, image, privacy string) (*model.Post, error)
	GetPost(postID, viewerID int) (*model.Post, error)
	Update(userID, postID int, content *string, image string, removeImage bool, privacy string) (*model.Post, error)
	Delete(userID, postID int) error
	ListFeed(viewerID int, cursor string, limit int) (*FeedPage, error)
}

var _ PostServiceInterface = (*PostService)(nil)
