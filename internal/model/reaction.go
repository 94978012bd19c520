package model

import "time"

// 反应目标类型
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// 八种互斥的表情类型
const (
	ReactionLike    = "like"
	ReactionLove    = "love"
	ReactionCare    = "care"
	ReactionHaha    = "haha"
	ReactionWow     = "wow"
	ReactionSad     = "sad"
	ReactionAngry   = "angry"
	ReactionDislike = "dislike"
)

var reactionKinds = map[string]bool{
	ReactionLike:    true,
	ReactionLove:    true,
	ReactionCare:    true,
	ReactionHaha:    true,
	ReactionWow:     true,
	ReactionSad:     true,
	ReactionAngry:   true,
	ReactionDislike: true,
}

// IsValidReactionKind 判断表情类型是否合法
func IsValidReactionKind(kind string) bool {
	return reactionKinds[kind]
}

// IsValidTargetType 判断反应目标类型是否合法
func IsValidTargetType(targetType string) bool {
	return targetType == TargetPost || targetType == TargetComment
}

// Reaction 结构体表示一条反应记录
// 每个 (user_id, target_type, target_id) 至多一条
type Reaction struct {
	ID         int          `json:"id"`
	UserID     int          `json:"user_id"`
	TargetType string       `json:"target_type"`
	TargetID   int          `json:"target_id"`
	Kind       string       `json:"reaction_type"`
	CreatedAt  time.Time    `json:"created_at"`
	User       *UserSummary `json:"user,omitempty"`
}

// ReactionSummary 某个目标的反应聚合结果
type ReactionSummary struct {
	Reacted         bool           `json:"reacted"`
	CurrentReaction *string        `json:"current_reaction"`
	LikesCount      int            `json:"likes_count"`
	Reactions       map[string]int `json:"reactions"`
}
