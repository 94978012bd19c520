package util

import (
	"socialfeed-backend/internal/model"

	"github.com/go-playground/validator/v10"
)

// ValidateReactionKind 验证表情类型是否为八种枚举之一
func ValidateReactionKind(fl validator.FieldLevel) bool {
	kind, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return model.IsValidReactionKind(kind)
}
