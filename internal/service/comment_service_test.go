package service

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCommentServiceForTest() (*CommentService, *MockCommentRepository, *MockPostRepository, *MockReactionRepository, *MockUserRepository, *fakeStorage) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	reactionRepo := new(MockReactionRepository)
	userRepo := new(MockUserRepository)
	store := &fakeStorage{}
	service := NewCommentService(commentRepo, postRepo, reactionRepo, userRepo, store)
	return service, commentRepo, postRepo, reactionRepo, userRepo, store
}

func emptyReactionData(reactionRepo *MockReactionRepository, viewerID int) {
	reactionRepo.On("CountByTargets", model.TargetComment, mock.Anything).Return(map[int]int{}, nil)
	reactionRepo.On("BreakdownByTargets", model.TargetComment, mock.Anything).Return(map[int]map[string]int{}, nil)
	reactionRepo.On("FindKindsByUser", viewerID, model.TargetComment, mock.Anything).Return(map[int]string{}, nil)
}

// TestCreateComment 测试创建顶层评论
func TestCreateComment(t *testing.T) {
	service, commentRepo, postRepo, reactionRepo, userRepo, _ := newCommentServiceForTest()

	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("Create", mock.AnythingOfType("*model.Comment")).Return(nil)
	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Name: "alice"}, nil)
	emptyReactionData(reactionRepo, 1)

	comment, err := service.Create(1, 10, nil, "nice post", "")
	assert.NoError(t, err)
	assert.Equal(t, 10, comment.PostID)
	assert.Nil(t, comment.ParentID)
	assert.Equal(t, "alice", comment.User.Name)
	commentRepo.AssertExpectations(t)
}

// TestCreateCommentRequiresContentOrImage 测试空评论被拒绝
func TestCreateCommentRequiresContentOrImage(t *testing.T) {
	service, _, _, _, _, _ := newCommentServiceForTest()

	_, err := service.Create(1, 10, nil, "", "")
	assertAppError(t, err, errors.ErrValidation)
}

// TestCreateCommentImageOnly 测试只有图片没有文字的评论
func TestCreateCommentImageOnly(t *testing.T) {
	service, commentRepo, postRepo, reactionRepo, userRepo, _ := newCommentServiceForTest()

	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("Create", mock.AnythingOfType("*model.Comment")).Return(nil)
	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Name: "alice"}, nil)
	emptyReactionData(reactionRepo, 1)

	comment, err := service.Create(1, 10, nil, "", "comments/pic.png")
	assert.NoError(t, err)
	assert.Equal(t, "comments/pic.png", comment.Image)
}

// TestCreateReplyReparents 测试对回复的回复挂到顶层评论下
func TestCreateReplyReparents(t *testing.T) {
	service, commentRepo, postRepo, reactionRepo, userRepo, _ := newCommentServiceForTest()

	topID := 100
	replyID := 101
	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("FindByID", replyID).
		Return(&model.Comment{ID: replyID, PostID: 10, ParentID: &topID}, nil)
	commentRepo.On("Create", mock.AnythingOfType("*model.Comment")).Return(nil)
	userRepo.On("FindByID", 1).Return(&model.User{ID: 1, Name: "alice"}, nil)
	emptyReactionData(reactionRepo, 1)

	comment, err := service.Create(1, 10, &replyID, "me too", "")
	assert.NoError(t, err)
	assert.Equal(t, topID, *comment.ParentID)
}

// TestCreateReplyParentOtherPost 测试父评论属于其他帖子时被拒绝
func TestCreateReplyParentOtherPost(t *testing.T) {
	service, commentRepo, postRepo, _, _, _ := newCommentServiceForTest()

	parentID := 100
	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("FindByID", parentID).
		Return(&model.Comment{ID: parentID, PostID: 99}, nil)

	_, err := service.Create(1, 10, &parentID, "hello", "")
	assertAppError(t, err, errors.ErrResourceConflict)
}

// TestCreateCommentOnPrivatePost 测试他人的私密帖子不可评论
func TestCreateCommentOnPrivatePost(t *testing.T) {
	service, _, postRepo, _, _, _ := newCommentServiceForTest()

	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPrivate}, nil)

	_, err := service.Create(1, 10, nil, "hello", "")
	assertAppError(t, err, errors.ErrPostNotFound)
}

// TestUpdateCommentOwnerOnly 测试仅作者可以编辑
func TestUpdateCommentOwnerOnly(t *testing.T) {
	service, commentRepo, _, _, _, _ := newCommentServiceForTest()

	commentRepo.On("FindByID", 5).Return(&model.Comment{ID: 5, UserID: 2, PostID: 10, Content: "original"}, nil)

	_, err := service.Update(1, 5, "edited")
	assertAppError(t, err, errors.ErrForbidden)
}

// TestDeleteCommentByPostOwner 测试帖子作者可以删除他人评论
func TestDeleteCommentByPostOwner(t *testing.T) {
	service, commentRepo, postRepo, _, _, store := newCommentServiceForTest()

	commentRepo.On("FindByID", 5).
		Return(&model.Comment{ID: 5, UserID: 2, PostID: 10, Image: "comments/pic.png"}, nil)
	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 1}, nil)
	commentRepo.On("Delete", 5).Return(nil)

	err := service.Delete(1, 5)
	assert.NoError(t, err)
	assert.Contains(t, store.deleted, "comments/pic.png")
}

// TestDeleteCommentForbidden 测试无关用户不能删除
func TestDeleteCommentForbidden(t *testing.T) {
	service, commentRepo, postRepo, _, _, _ := newCommentServiceForTest()

	commentRepo.On("FindByID", 5).Return(&model.Comment{ID: 5, UserID: 2, PostID: 10}, nil)
	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 3}, nil)

	err := service.Delete(1, 5)
	assertAppError(t, err, errors.ErrForbidden)
}

// TestBuildTree 测试两层评论树的组装与反应填充
func TestBuildTree(t *testing.T) {
	service, commentRepo, postRepo, reactionRepo, _, _ := newCommentServiceForTest()

	now := time.Now()
	top1 := &model.Comment{ID: 1, PostID: 10, Content: "first", CreatedAt: now}
	top2 := &model.Comment{ID: 2, PostID: 10, Content: "second", CreatedAt: now.Add(-time.Minute)}
	parent1 := 1
	reply := &model.Comment{ID: 3, PostID: 10, ParentID: &parent1, Content: "reply", CreatedAt: now}

	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("ListTopLevelByPosts", []int{10}).
		Return(map[int][]*model.Comment{10: {top1, top2}}, nil)
	commentRepo.On("ListRepliesByParents", []int{1, 2}).
		Return(map[int][]*model.Comment{1: {reply}}, nil)

	reactionRepo.On("CountByTargets", model.TargetComment, intSet([]int{1, 2, 3})).
		Return(map[int]int{1: 2, 3: 1}, nil)
	reactionRepo.On("BreakdownByTargets", model.TargetComment, intSet([]int{1, 2, 3})).
		Return(map[int]map[string]int{1: {"like": 1, "sad": 1}, 3: {"haha": 1}}, nil)
	reactionRepo.On("FindKindsByUser", 7, model.TargetComment, intSet([]int{1, 2, 3})).
		Return(map[int]string{1: "sad"}, nil)

	tree, err := service.BuildTree(10, 7)
	assert.NoError(t, err)
	assert.Len(t, tree, 2)

	assert.Equal(t, 2, tree[0].LikesCount)
	assert.True(t, tree[0].IsLiked)
	assert.Equal(t, "sad", *tree[0].CurrentReaction)
	assert.Len(t, tree[0].Replies, 1)
	assert.Equal(t, 1, tree[0].Replies[0].LikesCount)

	assert.Equal(t, 0, tree[1].LikesCount)
	assert.False(t, tree[1].IsLiked)
	assert.Nil(t, tree[1].CurrentReaction)
	assert.Empty(t, tree[1].Replies)
	reactionRepo.AssertExpectations(t)
}

// TestBuildTreeEmpty 测试没有评论的帖子
func TestBuildTreeEmpty(t *testing.T) {
	service, commentRepo, postRepo, _, _, _ := newCommentServiceForTest()

	postRepo.On("FindByID", 10).Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPublic}, nil)
	commentRepo.On("ListTopLevelByPosts", []int{10}).
		Return(map[int][]*model.Comment{}, nil)

	tree, err := service.BuildTree(10, 7)
	assert.NoError(t, err)
	assert.Empty(t, tree)
	commentRepo.AssertNotCalled(t, "ListRepliesByParents", mock.Anything)
}
