package mysql

import (
	"database/sql"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"

	"go.uber.org/zap"
)

// reactionRepository 实现了 ReactionRepository 接口
type reactionRepository struct {
	db *sql.DB
}

// NewReactionRepository 创建一个新的 reactionRepository 实例
func NewReactionRepository(db *sql.DB) *reactionRepository {
	return &reactionRepository{db}
}

// Toggle 在单个事务内完成反应的切换
// 不存在则插入，同类型则删除，不同类型则原地更新
func (r *reactionRepository) Toggle(userID int, targetType string, targetID int, kind string) (bool, *string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback()

	var id int
	var existing string
	err = tx.QueryRow(`
		SELECT id, kind FROM reactions
		WHERE user_id = ? AND target_type = ? AND target_id = ?
		FOR UPDATE`,
		userID, targetType, targetID).Scan(&id, &existing)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO reactions (user_id, target_type, target_id, kind, created_at)
			VALUES (?, ?, ?, ?, NOW())`,
			userID, targetType, targetID, kind)
		if err != nil {
			util.Logger.Error("插入反应失败", zap.Error(err),
				zap.Int("user_id", userID), zap.String("target_type", targetType))
			return false, nil, err
		}
		if err = tx.Commit(); err != nil {
			return false, nil, err
		}
		return true, &kind, nil

	case err != nil:
		util.Logger.Error("查询反应失败", zap.Error(err), zap.Int("user_id", userID))
		return false, nil, err

	case existing == kind:
		if _, err = tx.Exec(`DELETE FROM reactions WHERE id = ?`, id); err != nil {
			util.Logger.Error("删除反应失败", zap.Error(err), zap.Int("reaction_id", id))
			return false, nil, err
		}
		if err = tx.Commit(); err != nil {
			return false, nil, err
		}
		return false, nil, nil

	default:
		if _, err = tx.Exec(`UPDATE reactions SET kind = ? WHERE id = ?`, kind, id); err != nil {
			util.Logger.Error("更新反应失败", zap.Error(err), zap.Int("reaction_id", id))
			return false, nil, err
		}
		if err = tx.Commit(); err != nil {
			return false, nil, err
		}
		return true, &kind, nil
	}
}

// CountByTarget 返回目标的反应总数
func (r *reactionRepository) CountByTarget(targetType string, targetID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM reactions WHERE target_type = ? AND target_id = ?`,
		targetType, targetID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// BreakdownByTarget 返回目标按类型分组的反应计数
func (r *reactionRepository) BreakdownByTarget(targetType string, targetID int) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT kind, COUNT(*) FROM reactions
		WHERE target_type = ? AND target_id = ?
		GROUP BY kind`,
		targetType, targetID)
	if err != nil {
		util.Logger.Error("查询反应分布失败", zap.Error(err),
			zap.String("target_type", targetType), zap.Int("target_id", targetID))
		return nil, err
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		breakdown[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return breakdown, nil
}

// ListByTarget 返回目标的全部反应，最新的在前，附带用户摘要
func (r *reactionRepository) ListByTarget(targetType string, targetID int) ([]*model.Reaction, error) {
	query := `
        SELECT r.id, r.user_id, r.target_type, r.target_id, r.kind, r.created_at,
               u.name, u.email, u.profile_image
        FROM reactions r
        JOIN users u ON r.user_id = u.id
        WHERE r.target_type = ? AND r.target_id = ?
        ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.Query(query, targetType, targetID)
	if err != nil {
		util.Logger.Error("查询反应列表失败", zap.Error(err),
			zap.String("target_type", targetType), zap.Int("target_id", targetID))
		return nil, err
	}
	defer rows.Close()

	var reactions []*model.Reaction
	for rows.Next() {
		var reaction model.Reaction
		var user model.UserSummary
		var profileImage sql.NullString
		err := rows.Scan(
			&reaction.ID, &reaction.UserID, &reaction.TargetType, &reaction.TargetID,
			&reaction.Kind, &reaction.CreatedAt,
			&user.Name, &user.Email, &profileImage,
		)
		if err != nil {
			return nil, err
		}
		user.ID = reaction.UserID
		user.ProfileImageURL = profileImage.String
		reaction.User = &user
		reactions = append(reactions, &reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reactions, nil
}

// FindKindsByUser 批量返回用户对一组目标的反应类型
func (r *reactionRepository) FindKindsByUser(userID int, targetType string, targetIDs []int) (map[int]string, error) {
	kinds := make(map[int]string)
	if len(targetIDs) == 0 {
		return kinds, nil
	}

	query := `
		SELECT target_id, kind FROM reactions
		WHERE user_id = ? AND target_type = ?
		AND target_id IN (` + placeholders(len(targetIDs)) + `)`
	args := append([]interface{}{userID, targetType}, intArgs(targetIDs)...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("批量查询用户反应失败", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var targetID int
		var kind string
		if err := rows.Scan(&targetID, &kind); err != nil {
			return nil, err
		}
		kinds[targetID] = kind
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return kinds, nil
}

// CountByTargets 批量返回一组目标各自的反应总数
func (r *reactionRepository) CountByTargets(targetType string, targetIDs []int) (map[int]int, error) {
	counts := make(map[int]int)
	if len(targetIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT target_id, COUNT(*) FROM reactions
		WHERE target_type = ?
		AND target_id IN (` + placeholders(len(targetIDs)) + `)
		GROUP BY target_id`
	args := append([]interface{}{targetType}, intArgs(targetIDs)...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("批量查询反应计数失败", zap.Error(err), zap.String("target_type", targetType))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var targetID, count int
		if err := rows.Scan(&targetID, &count); err != nil {
			return nil, err
		}
		counts[targetID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// BreakdownByTargets 批量返回一组目标各自按类型分组的计数
func (r *reactionRepository) BreakdownByTargets(targetType string, targetIDs []int) (map[int]map[string]int, error) {
	breakdowns := make(map[int]map[string]int)
	if len(targetIDs) == 0 {
		return breakdowns, nil
	}

	query := `
		SELECT target_id, kind, COUNT(*) FROM reactions
		WHERE target_type = ?
		AND target_id IN (` + placeholders(len(targetIDs)) + `)
		GROUP BY target_id, kind`
	args := append([]interface{}{targetType}, intArgs(targetIDs)...)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("批量查询反应分布失败", zap.Error(err), zap.String("target_type", targetType))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var targetID, count int
		var kind string
		if err := rows.Scan(&targetID, &kind, &count); err != nil {
			return nil, err
		}
		if breakdowns[targetID] == nil {
			breakdowns[targetID] = make(map[string]int)
		}
		breakdowns[targetID][kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return breakdowns, nil
}

// TargetExists 按目标类型到对应表校验目标是否存在
func (r *reactionRepository) TargetExists(targetType string, targetID int) (bool, error) {
	var query string
	switch targetType {
	case model.TargetPost:
		query = `SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`
	case model.TargetComment:
		query = `SELECT EXISTS(SELECT 1 FROM comments WHERE id = ?)`
	default:
		return false, nil
	}

	var exists bool
	if err := r.db.QueryRow(query, targetID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
