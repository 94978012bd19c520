package interfaces

import "socialfeed-backend/internal/model"

// ReactionRepository 定义了反应相关的数据库操作接口
type ReactionRepository interface {
	// Toggle 在单个事务内完成查找-变更：不存在则插入，同类型则删除，
	// 不同类型则原地更新，返回变更后的状态
	Toggle(userID int, targetType string, targetID int, kind string) (reacted bool, current *string, err error)
	CountByTarget(targetType string, targetID int) (int, error)
	BreakdownByTarget(targetType string, targetID int) (map[string]int, error)
	// ListByTarget 返回目标的全部反应记录，最新的在前，附带用户摘要
	ListByTarget(targetType string, targetID int) ([]*model.Reaction, error)
	// FindKindsByUser 批量返回用户对一组目标的反应类型，键为目标ID
	FindKindsByUser(userID int, targetType string, targetIDs []int) (map[int]string, error)
	// CountByTargets 批量返回一组目标各自的反应总数
	CountByTargets(targetType string, targetIDs []int) (map[int]int, error)
	// BreakdownByTargets 批量返回一组目标各自按类型分组的计数
	BreakdownByTargets(targetType string, targetIDs []int) (map[int]map[string]int, error)
	// TargetExists 按目标类型到对应表校验目标是否存在
	TargetExists(targetType string, targetID int) (bool, error)
}
