package interfaces

import "socialfeed-backend/internal/model"

// FriendRepository 定义了好友关系相关的数据库操作接口
// 好友关系存储为单行 (user_id, friend_id)，查询时双向匹配
type FriendRepository interface {
	CreateRequest(request *model.FriendRequest) error
	FindRequestByID(id int) (*model.FriendRequest, error)
	// FindPendingBetween 查找两个用户之间任一方向的待处理请求
	FindPendingBetween(userID, otherID int) (*model.FriendRequest, error)
	// AcceptRequest 在单个事务内标记请求为已接受并插入好友关系行
	AcceptRequest(requestID int) error
	RejectRequest(requestID int) error
	AreFriends(userID, otherID int) (bool, error)
	ListFriends(userID int, search string) ([]*model.UserSummary, error)
	ListPendingReceived(userID int) ([]*model.FriendRequest, error)
	// ListExcludedIDs 返回推荐/搜索时要排除的用户ID：
	// 自己、双向好友、双向待处理请求的对方
	ListExcludedIDs(userID int) ([]int, error)
	// ListCandidates 返回排除集之外的用户，search 为空时不过滤
	ListCandidates(userID int, excludedIDs []int, search string) ([]*model.UserSummary, error)
}
