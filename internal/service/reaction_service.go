package service

import (
	"socialfeed-backend/internal/errors"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/repository/interfaces"
	"socialfeed-backend/internal/util"

	"go.uber.org/zap"
)

// ReactionService 处理帖子与评论的反应逻辑
type ReactionService struct {
	reactionRepo interfaces.ReactionRepository
}

// NewReactionService 创建一个新的 ReactionService 实例
func NewReactionService(reactionRepo interfaces.ReactionRepository) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo}
}

// Toggle 切换用户对目标的反应并返回变更后的汇总
func (s *ReactionService) Toggle(userID int, targetType string, targetID int, kind string) (*model.ReactionSummary, error) {
	if !model.IsValidTargetType(targetType) {
		return nil, errors.New(errors.ErrValidation, "invalid target type")
	}
	if !model.IsValidReactionKind(kind) {
		return nil, errors.New(errors.ErrValidation, "invalid reaction type")
	}

	if err := s.ensureTargetExists(targetType, targetID); err != nil {
		return nil, err
	}

	reacted, current, err := s.reactionRepo.Toggle(userID, targetType, targetID, kind)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to toggle reaction", err)
	}

	count, err := s.reactionRepo.CountByTarget(targetType, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to count reactions", err)
	}
	breakdown, err := s.reactionRepo.BreakdownByTarget(targetType, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to load reaction breakdown", err)
	}

	util.Logger.Info("反应切换成功",
		zap.Int("user_id", userID), zap.String("target_type", targetType),
		zap.Int("target_id", targetID), zap.Bool("reacted", reacted))

	return &model.ReactionSummary{
		Reacted:         reacted,
		CurrentReaction: current,
		LikesCount:      count,
		Reactions:       breakdown,
	}, nil
}

// GetReactors 返回目标的全部反应记录，最新的在前
func (s *ReactionService) GetReactors(targetType string, targetID int) ([]*model.Reaction, error) {
	if !model.IsValidTargetType(targetType) {
		return nil, errors.New(errors.ErrValidation, "invalid target type")
	}
	if err := s.ensureTargetExists(targetType, targetID); err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.ListByTarget(targetType, targetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "failed to list reactions", err)
	}
	return reactions, nil
}

func (s *ReactionService) ensureTargetExists(targetType string, targetID int) error {
	exists, err := s.reactionRepo.TargetExists(targetType, targetID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "failed to check target", err)
	}
	if !exists {
		if targetType == model.TargetComment {
			return errors.New(errors.ErrCommentNotFound, "comment not found")
		}
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	return nil
}

type ReactionServiceInterface interface {
	Toggle(userID int, targetType string, targetID int, kind string) (*model.ReactionSummary, error)
	GetReactors(targetType string, targetID int) ([]*model.Reaction, error)
}

var _ ReactionServiceInterface = (*ReactionService)(nil)
