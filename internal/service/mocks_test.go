package service

import (
	"mime/multipart"
	"os"
	"socialfeed-backend/config"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	config.AppConfig.JWTSecret = "test-secret"
	os.Exit(m.Run())
}

// intSet 匹配元素相同但顺序不限的ID切片
func intSet(want []int) interface{} {
	return mock.MatchedBy(func(got []int) bool {
		if len(got) != len(want) {
			return false
		}
		seen := make(map[int]int, len(got))
		for _, id := range got {
			seen[id]++
		}
		for _, id := range want {
			seen[id]--
			if seen[id] < 0 {
				return false
			}
		}
		return true
	})
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateSecurity(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(id int) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPostRepository) ListVisible(viewerID int, cursorTime time.Time, cursorID int, limit int) ([]*model.Post, error) {
	args := m.Called(viewerID, cursorTime, cursorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

// MockCommentRepository 是 CommentRepository 接口的模拟实现
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(id int) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListTopLevelByPosts(postIDs []int) (map[int][]*model.Comment, error) {
	args := m.Called(postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListRepliesByParents(parentIDs []int) (map[int][]*model.Comment, error) {
	args := m.Called(parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]*model.Comment), args.Error(1)
}

// MockReactionRepository 是 ReactionRepository 接口的模拟实现
type MockReactionRepository struct {
	mock.Mock
}

func (m *MockReactionRepository) Toggle(userID int, targetType string, targetID int, kind string) (bool, *string, error) {
	args := m.Called(userID, targetType, targetID, kind)
	if args.Get(1) == nil {
		return args.Bool(0), nil, args.Error(2)
	}
	return args.Bool(0), args.Get(1).(*string), args.Error(2)
}

func (m *MockReactionRepository) CountByTarget(targetType string, targetID int) (int, error) {
	args := m.Called(targetType, targetID)
	return args.Int(0), args.Error(1)
}

func (m *MockReactionRepository) BreakdownByTarget(targetType string, targetID int) (map[string]int, error) {
	args := m.Called(targetType, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockReactionRepository) ListByTarget(targetType string, targetID int) ([]*model.Reaction, error) {
	args := m.Called(targetType, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reaction), args.Error(1)
}

func (m *MockReactionRepository) FindKindsByUser(userID int, targetType string, targetIDs []int) (map[int]string, error) {
	args := m.Called(userID, targetType, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]string), args.Error(1)
}

func (m *MockReactionRepository) CountByTargets(targetType string, targetIDs []int) (map[int]int, error) {
	args := m.Called(targetType, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockReactionRepository) BreakdownByTargets(targetType string, targetIDs []int) (map[int]map[string]int, error) {
	args := m.Called(targetType, targetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]map[string]int), args.Error(1)
}

func (m *MockReactionRepository) TargetExists(targetType string, targetID int) (bool, error) {
	args := m.Called(targetType, targetID)
	return args.Bool(0), args.Error(1)
}

// MockFriendRepository 是 FriendRepository 接口的模拟实现
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(request *model.FriendRequest) error {
	args := m.Called(request)
	return args.Error(0)
}

func (m *MockFriendRepository) FindRequestByID(id int) (*model.FriendRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) FindPendingBetween(userID, otherID int) (*model.FriendRequest, error) {
	args := m.Called(userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) AcceptRequest(requestID int) error {
	args := m.Called(requestID)
	return args.Error(0)
}

func (m *MockFriendRepository) RejectRequest(requestID int) error {
	args := m.Called(requestID)
	return args.Error(0)
}

func (m *MockFriendRepository) AreFriends(userID, otherID int) (bool, error) {
	args := m.Called(userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) ListFriends(userID int, search string) ([]*model.UserSummary, error) {
	args := m.Called(userID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserSummary), args.Error(1)
}

func (m *MockFriendRepository) ListPendingReceived(userID int) ([]*model.FriendRequest, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) ListExcludedIDs(userID int) ([]int, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockFriendRepository) ListCandidates(userID int, excludedIDs []int, search string) ([]*model.UserSummary, error) {
	args := m.Called(userID, excludedIDs, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserSummary), args.Error(1)
}

// fakeStorage 测试用的存储实现
type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) UploadFile(file *multipart.FileHeader, path string) (string, error) {
	return path, nil
}

func (s *fakeStorage) DeleteFile(path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}
