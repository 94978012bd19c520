package service

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/repository/interfaces"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"

	"go.uber.org/zap"
)

// CommentService 处理评论与两层回复树的业务逻辑
type CommentService struct {
	commentRepo  interfaces.CommentRepository
	postRepo     interfaces.PostRepository
	reactionRepo interfaces.ReactionRepository
	userRepo     interfaces.UserRepository
	store        storage.Storage
}

// NewCommentService 创建一个新的 CommentService 实例
func NewCommentService(
	commentRepo interfaces.CommentRepository,
	postRepo interfaces.PostRepository,
	reactionRepo interfaces.ReactionRepository,
	userRepo interfaces.UserRepository,
	store storage.Storage,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		userRepo:     userRepo,
		store:        store,
	}
}

// Create 创建评论或回复
// 对回复的回复会重新挂到顶层评论下，保持两层结构
func (s *CommentService) Create(userID, postID int, parentID *int, content, image string) (*model.Comment, error) {
	if content == "" && image == "" {
		return nil, errors.New(errors.ErrValidation, "comment must have content or an image")
	}

	post, err := s.visiblePost(postID, userID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.FindByID(*parentID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to find parent comment", err)
		}
		if parent == nil {
			return nil, errors.New(errors.ErrCommentNotFound, "parent comment not found")
		}
		if parent.PostID != post.ID {
			return nil, errors.New(errors.ErrResourceConflict, "parent comment belongs to another post")
		}
		// 回复的回复挂到顶层评论下
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		PostID:   post.ID,
		ParentID: parentID,
		Content:  content,
		Image:    image,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create comment", err)
	}

	if err := s.attachAuthor(comment); err != nil {
		return nil, err
	}
	if err := s.annotateComments([]*model.Comment{comment}, userID); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update 更新评论内容，仅作者可以操作
func (s *CommentService) Update(userID, commentID int, content string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find comment", err)
	}
	if comment == nil {
		return nil, errors.New(errors.ErrCommentNotFound, "comment not found")
	}
	if comment.UserID != userID {
		return nil, errors.New(errors.ErrForbidden, "only the author can edit this comment")
	}
	if content == "" && comment.Image == "" {
		return nil, errors.New(errors.ErrValidation, "comment must have content or an image")
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to update comment", err)
	}
	if err := s.attachAuthor(comment); err != nil {
		return nil, err
	}
	if err := s.annotateComments([]*model.Comment{comment}, userID); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete 删除评论，作者或帖子作者可以操作
func (s *CommentService) Delete(userID, commentID int) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to find comment", err)
	}
	if comment == nil {
		return errors.New(errors.ErrCommentNotFound, "comment not found")
	}

	if comment.UserID != userID {
		post, err := s.postRepo.FindByID(comment.PostID)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "failed to find post", err)
		}
		if post == nil || post.UserID != userID {
			return errors.New(errors.ErrForbidden, "not allowed to delete this comment")
		}
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to delete comment", err)
	}

	if comment.Image != "" {
		if err := s.store.DeleteFile(comment.Image); err != nil {
			util.Logger.Error("删除评论图片失败", zap.Error(err), zap.String("path", comment.Image))
		}
	}
	util.Logger.Info("评论删除成功", zap.Int("comment_id", commentID))
	return nil
}

// BuildTree 组装帖子的两层评论树并批量填充反应数据
func (s *CommentService) BuildTree(postID, viewerID int) ([]*model.Comment, error) {
	if _, err := s.visiblePost(postID, viewerID); err != nil {
		return nil, err
	}
	trees, err := s.buildTreesForPosts([]int{postID}, viewerID)
	if err != nil {
		return nil, err
	}
	return trees[postID], nil
}

// buildTreesForPosts 跳过可见性检查的批量树组装，供信息流复用
// 整页只发一次顶层查询、一次回复查询，反应数据每个关注点一次，
// 结果按帖子ID和评论ID重新分配
func (s *CommentService) buildTreesForPosts(postIDs []int, viewerID int) (map[int][]*model.Comment, error) {
	trees := make(map[int][]*model.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return trees, nil
	}

	topLevelByPost, err := s.commentRepo.ListTopLevelByPosts(postIDs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list comments", err)
	}

	var parentIDs []int
	for _, postID := range postIDs {
		for _, comment := range topLevelByPost[postID] {
			parentIDs = append(parentIDs, comment.ID)
		}
	}

	var replies map[int][]*model.Comment
	if len(parentIDs) > 0 {
		replies, err = s.commentRepo.ListRepliesByParents(parentIDs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "failed to list replies", err)
		}
	}

	all := make([]*model.Comment, 0, len(parentIDs))
	for _, postID := range postIDs {
		topLevel := topLevelByPost[postID]
		if topLevel == nil {
			topLevel = []*model.Comment{}
		}
		for _, comment := range topLevel {
			comment.Replies = replies[comment.ID]
			if comment.Replies == nil {
				comment.Replies = []*model.Comment{}
			}
			all = append(all, comment)
			all = append(all, comment.Replies...)
		}
		trees[postID] = topLevel
	}

	if err := s.annotateComments(all, viewerID); err != nil {
		return nil, err
	}
	return trees, nil
}

// annotateComments 批量填充评论的反应计数、分布与当前用户的反应
func (s *CommentService) annotateComments(comments []*model.Comment, viewerID int) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]int, len(comments))
	for i, comment := range comments {
		ids[i] = comment.ID
	}

	counts, err := s.reactionRepo.CountByTargets(model.TargetComment, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to count reactions", err)
	}
	breakdowns, err := s.reactionRepo.BreakdownByTargets(model.TargetComment, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load reaction breakdowns", err)
	}
	kinds, err := s.reactionRepo.FindKindsByUser(viewerID, model.TargetComment, ids)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to load viewer reactions", err)
	}

	for _, comment := range comments {
		comment.LikesCount = counts[comment.ID]
		comment.Reactions = breakdowns[comment.ID]
		if comment.Reactions == nil {
			comment.Reactions = map[string]int{}
		}
		if kind, ok := kinds[comment.ID]; ok {
			k := kind
			comment.IsLiked = true
			comment.CurrentReaction = &k
		}
		comment.ImageURL = util.FileURL(comment.Image)
		if comment.User != nil {
			comment.User.ProfileImageURL = util.FileURL(comment.User.ProfileImageURL)
		}
	}
	return nil
}

// attachAuthor 填充评论的作者摘要
func (s *CommentService) attachAuthor(comment *model.Comment) error {
	user, err := s.userRepo.FindByID(comment.UserID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to find comment author", err)
	}
	if user != nil {
		summary := user.Summary()
		summary.ProfileImageURL = user.ProfileImage
		comment.User = summary
	}
	return nil
}

// visiblePost 返回对 viewer 可见的帖子，私密帖子仅作者可见
func (s *CommentService) visiblePost(postID, viewerID int) (*model.Post, error) {
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
	return post, nil
}

type CommentServiceInterface interface {
	Create(userID, postID int, parentID *int, content, image string) (*model.Comment, error)
	Update(userID, commentID int, content string) (*model.Comment, error)
	Delete(userID, commentID int) error
	BuildTree(postID, viewerID int) ([]*model.Comment, error)
}

var _ CommentServiceInterface = (*CommentService)(nil)
