package service

import (
	"fmt"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPostServiceForTest() (*PostService, *MockPostRepository, *MockReactionRepository, *MockCommentRepository, *fakeStorage) {
	postRepo := new(MockPostRepository)
	reactionRepo := new(MockReactionRepository)
	commentRepo := new(MockCommentRepository)
	userRepo := new(MockUserRepository)
	store := &fakeStorage{}
	commentService := NewCommentService(commentRepo, postRepo, reactionRepo, userRepo, store)
	service := NewPostService(postRepo, reactionRepo, commentService, store)
	return service, postRepo, reactionRepo, commentRepo, store
}

func noComments(commentRepo *MockCommentRepository) {
	commentRepo.On("ListTopLevelByPosts", mock.Anything).
		Return(map[int][]*model.Comment{}, nil)
}

func strPtr(s string) *string {
	return &s
}

func emptyPostReactions(reactionRepo *MockReactionRepository, viewerID int) {
	reactionRepo.On("CountByTargets", model.TargetPost, mock.Anything).Return(map[int]int{}, nil)
	reactionRepo.On("BreakdownByTargets", model.TargetPost, mock.Anything).Return(map[int]map[string]int{}, nil)
	reactionRepo.On("FindKindsByUser", viewerID, model.TargetPost, mock.Anything).Return(map[int]string{}, nil)
}

// TestCreatePost 测试创建帖子
func TestCreatePost(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	postRepo.On("Create", mock.AnythingOfType("*model.Post")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*model.Post).ID = 10
		}).Return(nil)
	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Content: "hello", Privacy: model.PrivacyPublic}, nil)
	emptyPostReactions(reactionRepo, 1)
	noComments(commentRepo)

	post, err := service.Create(1, "hello", "", "")
	assert.NoError(t, err)
	assert.Equal(t, 10, post.ID)
	assert.Equal(t, model.PrivacyPublic, post.Privacy)
}

// TestCreatePostValidation 测试空帖子与非法可见性
func TestCreatePostValidation(t *testing.T) {
	service, _, _, _, _ := newPostServiceForTest()

	_, err := service.Create(1, "", "", "")
	assertAppError(t, err, errors.ErrValidation)

	_, err = service.Create(1, "hello", "", "friends")
	assertAppError(t, err, errors.ErrValidation)
}

// TestGetPostPrivacy 测试私密帖子仅作者可见
func TestGetPostPrivacy(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 2, Privacy: model.PrivacyPrivate}, nil)

	// 非作者得到404
	_, err := service.GetPost(10, 1)
	assertAppError(t, err, errors.ErrPostNotFound)

	// 作者可以访问
	emptyPostReactions(reactionRepo, 2)
	noComments(commentRepo)
	post, err := service.GetPost(10, 2)
	assert.NoError(t, err)
	assert.Equal(t, 10, post.ID)
}

// TestUpdatePostOwnerOnly 测试仅作者可以编辑
func TestUpdatePostOwnerOnly(t *testing.T) {
	service, postRepo, _, _, _ := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 2, Content: "original"}, nil)

	_, err := service.Update(1, 10, strPtr("edited"), "", false, "")
	assertAppError(t, err, errors.ErrForbidden)
	postRepo.AssertNotCalled(t, "Update", mock.Anything)
}

// TestUpdatePostReplacesImage 测试替换图片时删除旧文件
func TestUpdatePostReplacesImage(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, store := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Content: "hello", Image: "posts/old.png", Privacy: model.PrivacyPublic}, nil)
	postRepo.On("Update", mock.AnythingOfType("*model.Post")).Return(nil)
	emptyPostReactions(reactionRepo, 1)
	noComments(commentRepo)

	_, err := service.Update(1, 10, strPtr("hello"), "posts/new.png", false, "")
	assert.NoError(t, err)
	assert.Contains(t, store.deleted, "posts/old.png")
}

// TestUpdatePostKeepsContent 测试不提交文字字段时保留原文字
func TestUpdatePostKeepsContent(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Content: "original text", Privacy: model.PrivacyPublic}, nil)
	postRepo.On("Update", mock.AnythingOfType("*model.Post")).Return(nil)
	emptyPostReactions(reactionRepo, 1)
	noComments(commentRepo)

	post, err := service.Update(1, 10, nil, "posts/new.png", false, "")
	assert.NoError(t, err)
	assert.Equal(t, "original text", post.Content)
	assert.Equal(t, "posts/new.png", post.Image)
}

// TestUpdatePostRemoveImage 测试移除图片并删除旧文件
func TestUpdatePostRemoveImage(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, store := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Content: "hello", Image: "posts/old.png", Privacy: model.PrivacyPublic}, nil)
	postRepo.On("Update", mock.AnythingOfType("*model.Post")).Return(nil)
	emptyPostReactions(reactionRepo, 1)
	noComments(commentRepo)

	post, err := service.Update(1, 10, nil, "", true, "")
	assert.NoError(t, err)
	assert.Empty(t, post.Image)
	assert.Contains(t, store.deleted, "posts/old.png")
}

// TestUpdatePostRemoveImageRequiresContent 测试移除图片后帖子不能为空
func TestUpdatePostRemoveImageRequiresContent(t *testing.T) {
	service, postRepo, _, _, store := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Content: "", Image: "posts/old.png", Privacy: model.PrivacyPublic}, nil)

	_, err := service.Update(1, 10, nil, "", true, "")
	assertAppError(t, err, errors.ErrValidation)
	postRepo.AssertNotCalled(t, "Update", mock.Anything)
	assert.Empty(t, store.deleted)
}

// TestDeletePost 测试删除帖子及其图片
func TestDeletePost(t *testing.T) {
	service, postRepo, _, _, store := newPostServiceForTest()

	postRepo.On("FindByID", 10).
		Return(&model.Post{ID: 10, UserID: 1, Image: "posts/pic.png"}, nil)
	postRepo.On("Delete", 10).Return(nil)

	err := service.Delete(1, 10)
	assert.NoError(t, err)
	assert.Contains(t, store.deleted, "posts/pic.png")

	// 非作者删除被拒绝
	err = service.Delete(2, 10)
	assertAppError(t, err, errors.ErrForbidden)
}

// TestListFeedAssembly 测试信息流批量填充反应数据
func TestListFeedAssembly(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	now := time.Now()
	posts := []*model.Post{
		{ID: 3, UserID: 2, Content: "third", Privacy: model.PrivacyPublic, CreatedAt: now},
		{ID: 2, UserID: 2, Content: "second", Privacy: model.PrivacyPublic, CreatedAt: now.Add(-time.Minute)},
	}
	postRepo.On("ListVisible", 1, mock.Anything, 0, DefaultFeedPageSize).Return(posts, nil)

	reactionRepo.On("CountByTargets", model.TargetPost, []int{3, 2}).
		Return(map[int]int{3: 5}, nil)
	reactionRepo.On("BreakdownByTargets", model.TargetPost, []int{3, 2}).
		Return(map[int]map[string]int{3: {"like": 3, "wow": 2}}, nil)
	reactionRepo.On("FindKindsByUser", 1, model.TargetPost, []int{3, 2}).
		Return(map[int]string{3: "wow"}, nil)
	noComments(commentRepo)

	page, err := service.ListFeed(1, "", 0)
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 5, page.Posts[0].LikesCount)
	assert.True(t, page.Posts[0].IsLiked)
	assert.Equal(t, "wow", *page.Posts[0].CurrentReaction)
	assert.False(t, page.Posts[1].IsLiked)
	// 不满一页时没有下一页游标
	assert.Empty(t, page.NextCursor)
	reactionRepo.AssertExpectations(t)
}

// TestListFeedBatchesCommentQueries 测试整页只发一次评论与回复查询
func TestListFeedBatchesCommentQueries(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	now := time.Now()
	posts := []*model.Post{
		{ID: 3, UserID: 2, Content: "third", Privacy: model.PrivacyPublic, CreatedAt: now},
		{ID: 2, UserID: 2, Content: "second", Privacy: model.PrivacyPublic, CreatedAt: now.Add(-time.Minute)},
		{ID: 1, UserID: 2, Content: "first", Privacy: model.PrivacyPublic, CreatedAt: now.Add(-2 * time.Minute)},
	}
	postRepo.On("ListVisible", 7, mock.Anything, 0, DefaultFeedPageSize).Return(posts, nil)
	emptyPostReactions(reactionRepo, 7)

	parent30 := 30
	top := &model.Comment{ID: 30, PostID: 3, Content: "top", CreatedAt: now}
	reply := &model.Comment{ID: 31, PostID: 3, ParentID: &parent30, Content: "reply", CreatedAt: now}
	commentRepo.On("ListTopLevelByPosts", []int{3, 2, 1}).
		Return(map[int][]*model.Comment{3: {top}}, nil)
	commentRepo.On("ListRepliesByParents", []int{30}).
		Return(map[int][]*model.Comment{30: {reply}}, nil)

	reactionRepo.On("CountByTargets", model.TargetComment, intSet([]int{30, 31})).
		Return(map[int]int{}, nil)
	reactionRepo.On("BreakdownByTargets", model.TargetComment, intSet([]int{30, 31})).
		Return(map[int]map[string]int{}, nil)
	reactionRepo.On("FindKindsByUser", 7, model.TargetComment, intSet([]int{30, 31})).
		Return(map[int]string{}, nil)

	page, err := service.ListFeed(7, "", 0)
	assert.NoError(t, err)
	assert.Len(t, page.Posts, 3)
	assert.Len(t, page.Posts[0].Comments, 1)
	assert.Len(t, page.Posts[0].Comments[0].Replies, 1)
	assert.Empty(t, page.Posts[1].Comments)

	// 评论、回复与每类反应数据整页各查询一次，不随帖子数增长
	commentRepo.AssertNumberOfCalls(t, "ListTopLevelByPosts", 1)
	commentRepo.AssertNumberOfCalls(t, "ListRepliesByParents", 1)
	reactionRepo.AssertNumberOfCalls(t, "CountByTargets", 2)
	reactionRepo.AssertNumberOfCalls(t, "BreakdownByTargets", 2)
	reactionRepo.AssertNumberOfCalls(t, "FindKindsByUser", 2)
}

// TestListFeedCursor 测试游标的生成与解析
func TestListFeedCursor(t *testing.T) {
	service, postRepo, reactionRepo, commentRepo, _ := newPostServiceForTest()

	now := time.Unix(1700000000, 0)
	full := make([]*model.Post, 2)
	for i := range full {
		full[i] = &model.Post{
			ID:        10 - i,
			UserID:    2,
			Content:   "post",
			Privacy:   model.PrivacyPublic,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
	}
	postRepo.On("ListVisible", 1, mock.Anything, 0, 2).Return(full, nil)
	emptyPostReactions(reactionRepo, 1)
	noComments(commentRepo)

	page, err := service.ListFeed(1, "", 2)
	assert.NoError(t, err)
	last := full[1]
	assert.Equal(t, fmt.Sprintf("%d_%d", last.CreatedAt.Unix(), last.ID), page.NextCursor)

	// 用游标取下一页
	postRepo.On("ListVisible", 1, last.CreatedAt, last.ID, 2).
		Return([]*model.Post{}, nil)
	next, err := service.ListFeed(1, page.NextCursor, 2)
	assert.NoError(t, err)
	assert.Empty(t, next.Posts)
	assert.Empty(t, next.NextCursor)
	postRepo.AssertExpectations(t)
}

// TestListFeedBadCursor 测试非法游标
func TestListFeedBadCursor(t *testing.T) {
	service, _, _, _, _ := newPostServiceForTest()

	_, err := service.ListFeed(1, "not-a-cursor", 0)
	assertAppError(t, err, errors.ErrValidation)

	_, err = service.ListFeed(1, "123_abc", 0)
	assertAppError(t, err, errors.ErrValidation)
}
