package mysql

import (
	"database/sql"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"

	"go.uber.org/zap"
)

// friendRepository 实现了 FriendRepository 接口
type friendRepository struct {
	db *sql.DB
}

// NewFriendRepository 创建一个新的 friendRepository 实例
func NewFriendRepository(db *sql.DB) *friendRepository {
	return &friendRepository{db}
}

// CreateRequest 创建一条好友请求
func (r *friendRepository) CreateRequest(request *model.FriendRequest) error {
	query := `INSERT INTO friend_requests (sender_id, receiver_id, status, created_at, updated_at)
              VALUES (?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, request.SenderID, request.ReceiverID, model.RequestPending)
	if err != nil {
		util.Logger.Error("创建好友请求失败", zap.Error(err),
			zap.Int("sender_id", request.SenderID), zap.Int("receiver_id", request.ReceiverID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	request.ID = int(id)
	request.Status = model.RequestPending
	util.Logger.Info("好友请求创建成功", zap.Int("request_id", request.ID))
	return nil
}

// FindRequestByID 通过ID查找好友请求
func (r *friendRepository) FindRequestByID(id int) (*model.FriendRequest, error) {
	query := `SELECT id, sender_id, receiver_id, status, created_at, updated_at
              FROM friend_requests WHERE id = ?`
	var request model.FriendRequest
	err := r.db.QueryRow(query, id).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindPendingBetween 查找两个用户之间任一方向的待处理请求
func (r *friendRepository) FindPendingBetween(userID, otherID int) (*model.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friend_requests
		WHERE status = ?
		AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		LIMIT 1`
	var request model.FriendRequest
	err := r.db.QueryRow(query, model.RequestPending, userID, otherID, otherID, userID).Scan(
		&request.ID, &request.SenderID, &request.ReceiverID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// AcceptRequest 在单个事务内标记请求为已接受并插入好友关系行
func (r *friendRepository) AcceptRequest(requestID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var senderID, receiverID int
	err = tx.QueryRow(`
		SELECT sender_id, receiver_id FROM friend_requests
		WHERE id = ? AND status = ? FOR UPDATE`,
		requestID, model.RequestPending).Scan(&senderID, &receiverID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE friend_requests SET status = ?, updated_at = NOW() WHERE id = ?`,
		model.RequestAccepted, requestID)
	if err != nil {
		util.Logger.Error("更新好友请求状态失败", zap.Error(err), zap.Int("request_id", requestID))
		return err
	}

	_, err = tx.Exec(`INSERT INTO friends (user_id, friend_id, created_at) VALUES (?, ?, NOW())`,
		senderID, receiverID)
	if err != nil {
		util.Logger.Error("插入好友关系失败", zap.Error(err), zap.Int("request_id", requestID))
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	util.Logger.Info("好友请求已接受",
		zap.Int("request_id", requestID), zap.Int("sender_id", senderID), zap.Int("receiver_id", receiverID))
	return nil
}

// RejectRequest 标记请求为已拒绝
func (r *friendRepository) RejectRequest(requestID int) error {
	_, err := r.db.Exec(`UPDATE friend_requests SET status = ?, updated_at = NOW() WHERE id = ?`,
		model.RequestRejected, requestID)
	if err != nil {
		util.Logger.Error("拒绝好友请求失败", zap.Error(err), zap.Int("request_id", requestID))
	}
	return err
}

// AreFriends 双向查询两个用户是否已是好友
func (r *friendRepository) AreFriends(userID, otherID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM friends
			WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)
		)`,
		userID, otherID, otherID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListFriends 返回用户的好友摘要，可按名称或邮箱过滤
func (r *friendRepository) ListFriends(userID int, search string) ([]*model.UserSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.profile_image
		FROM users u
		JOIN friends f ON (f.user_id = ? AND f.friend_id = u.id)
		               OR (f.friend_id = ? AND f.user_id = u.id)`
	args := []interface{}{userID, userID}

	if search != "" {
		query += ` WHERE (u.name LIKE ? OR u.email LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY u.name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询好友列表失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// ListPendingReceived 返回用户收到的待处理请求，附带发送者摘要
func (r *friendRepository) ListPendingReceived(userID int) ([]*model.FriendRequest, error) {
	query := `
		SELECT fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, fr.updated_at,
		       u.name, u.email, u.profile_image
		FROM friend_requests fr
		JOIN users u ON fr.sender_id = u.id
		WHERE fr.receiver_id = ? AND fr.status = ?
		ORDER BY fr.created_at DESC`

	rows, err := r.db.Query(query, userID, model.RequestPending)
	if err != nil {
		util.Logger.Error("查询待处理请求失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	var requests []*model.FriendRequest
	for rows.Next() {
		var request model.FriendRequest
		var sender model.UserSummary
		var profileImage sql.NullString
		err := rows.Scan(
			&request.ID, &request.SenderID, &request.ReceiverID,
			&request.Status, &request.CreatedAt, &request.UpdatedAt,
			&sender.Name, &sender.Email, &profileImage,
		)
		if err != nil {
			return nil, err
		}
		sender.ID = request.SenderID
		sender.ProfileImageURL = profileImage.String
		request.Sender = &sender
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// ListExcludedIDs 返回推荐与搜索时要排除的用户ID：
// 自己、双向好友、双向待处理请求的对方
func (r *friendRepository) ListExcludedIDs(userID int) ([]int, error) {
	query := `
		SELECT friend_id FROM friends WHERE user_id = ?
		UNION
		SELECT user_id FROM friends WHERE friend_id = ?
		UNION
		SELECT receiver_id FROM friend_requests WHERE sender_id = ? AND status = ?
		UNION
		SELECT sender_id FROM friend_requests WHERE receiver_id = ? AND status = ?`

	rows, err := r.db.Query(query, userID, userID,
		userID, model.RequestPending, userID, model.RequestPending)
	if err != nil {
		util.Logger.Error("查询排除集失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	ids := []int{userID}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListCandidates 返回排除集之外的用户，search 为空时不过滤
func (r *friendRepository) ListCandidates(userID int, excludedIDs []int, search string) ([]*model.UserSummary, error) {
	query := `SELECT id, name, email, profile_image FROM users WHERE 1=1`
	var args []interface{}

	if len(excludedIDs) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(excludedIDs)) + `)`
		args = append(args, intArgs(excludedIDs)...)
	}
	if search != "" {
		query += ` AND (name LIKE ? OR email LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询候选用户失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

func scanUserSummaries(rows *sql.Rows) ([]*model.UserSummary, error) {
	var users []*model.UserSummary
	for rows.Next() {
		var user model.UserSummary
		var profileImage sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &profileImage); err != nil {
			return nil, err
		}
		user.ProfileImageURL = profileImage.String
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
