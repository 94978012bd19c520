package model

import "time"

// 好友请求状态
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest 结构体表示好友请求
type FriendRequest struct {
	ID         int          `json:"id"`
	SenderID   int          `json:"sender_id"`
	ReceiverID int          `json:"receiver_id"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Sender     *UserSummary `json:"sender,omitempty"`
}
