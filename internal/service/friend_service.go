package service

import (
	"database/sql"
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/repository/interfaces"
	"socialfeed-backend/internal/util"

	"go.uber.org/zap"
)

// FriendService 处理好友请求与好友关系的业务逻辑
type FriendService struct {
	friendRepo interfaces.FriendRepository
	userRepo   interfaces.UserRepository
}

// NewFriendService 创建一个新的 FriendService 实例
func NewFriendService(friendRepo interfaces.FriendRepository, userRepo interfaces.UserRepository) *FriendService {
	return &FriendService{friendRepo: friendRepo, userRepo: userRepo}
}

// Suggest 返回可以添加为好友的用户
// 排除自己、已是好友的用户以及任一方向有待处理请求的用户
func (s *FriendService) Suggest(userID int, search string) ([]*model.UserSummary, error) {
	excluded, err := s.friendRepo.ListExcludedIDs(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load exclusions", err)
	}
	candidates, err := s.friendRepo.ListCandidates(userID, excluded, search)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list candidates", err)
	}
	for _, candidate := range candidates {
		candidate.ProfileImageURL = util.FileURL(candidate.ProfileImageURL)
	}
	return candidates, nil
}

// SendRequest 发送好友请求
// 已被拒绝的历史请求不阻止重新发送
func (s *FriendService) SendRequest(senderID, receiverID int) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, errors.New(errors.ErrSelfRequest, "cannot send a friend request to yourself")
	}

	receiver, err := s.userRepo.FindByID(receiverID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find receiver", err)
	}
	if receiver == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	friends, err := s.friendRepo.AreFriends(senderID, receiverID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to check friendship", err)
	}
	if friends {
		return nil, errors.New(errors.ErrAlreadyFriends, "already friends")
	}

	pending, err := s.friendRepo.FindPendingBetween(senderID, receiverID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to check pending requests", err)
	}
	if pending != nil {
		return nil, errors.New(errors.ErrRequestPending, "a friend request is already pending")
	}

	request := &model.FriendRequest{SenderID: senderID, ReceiverID: receiverID}
	if err := s.friendRepo.CreateRequest(request); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to create friend request", err)
	}

	util.Logger.Info("好友请求发送成功",
		zap.Int("sender_id", senderID), zap.Int("receiver_id", receiverID))
	return request, nil
}

// Accept 接受好友请求，仅接收者可以操作
func (s *FriendService) Accept(userID, requestID int) error {
	request, err := s.pendingRequestFor(userID, requestID)
	if err != nil {
		return err
	}

	if err := s.friendRepo.AcceptRequest(request.ID); err != nil {
		if err == sql.ErrNoRows {
			return errors.New(errors.ErrResourceConflict, "request already handled")
		}
		return errors.Wrap(errors.ErrDatabase, "failed to accept friend request", err)
	}
	return nil
}

// Reject 拒绝好友请求，仅接收者可以操作
func (s *FriendService) Reject(userID, requestID int) error {
	request, err := s.pendingRequestFor(userID, requestID)
	if err != nil {
		return err
	}

	if err := s.friendRepo.RejectRequest(request.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to reject friend request", err)
	}
	util.Logger.Info("好友请求已拒绝", zap.Int("request_id", request.ID))
	return nil
}

// ListFriends 返回用户的好友，可按名称或邮箱过滤
func (s *FriendService) ListFriends(userID int, search string) ([]*model.UserSummary, error) {
	friends, err := s.friendRepo.ListFriends(userID, search)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list friends", err)
	}
	for _, friend := range friends {
		friend.ProfileImageURL = util.FileURL(friend.ProfileImageURL)
	}
	return friends, nil
}

// ListPending 返回用户收到的待处理请求
func (s *FriendService) ListPending(userID int) ([]*model.FriendRequest, error) {
	requests, err := s.friendRepo.ListPendingReceived(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list pending requests", err)
	}
	for _, request := range requests {
		if request.Sender != nil {
			request.Sender.ProfileImageURL = util.FileURL(request.Sender.ProfileImageURL)
		}
	}
	return requests, nil
}

func (s *FriendService) pendingRequestFor(userID, requestID int) (*model.FriendRequest, error) {
	request, err := s.friendRepo.FindRequestByID(requestID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to find friend request", err)
	}
	if request == nil {
		return nil, errors.New(errors.ErrRequestNotFound, "friend request not found")
	}
	if request.ReceiverID != userID {
		return nil, errors.New(errors.ErrForbidden, "only the receiver can handle this request")
	}
	if request.Status != model.RequestPending {
		return nil, errors.New(errors.ErrResourceConflict, "request already handled")
	}
	return request, nil
}

type FriendServiceInterface interface {
	Suggest(userID int, search string) ([]*model.UserSummary, error)
	SendRequest(senderID, receiverID int) (*model.FriendRequest, error)
	Accept(userID, requestID int) error
	Reject(userID, requestID int) error
	ListFriends(userID int, search string) ([]*model.UserSummary, error)
	ListPending(userID int) ([]*model.FriendRequest, error)
}

var _ FriendServiceInterface = (*FriendService)(nil)
