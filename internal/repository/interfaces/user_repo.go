package interfaces

import "socialfeed-backend/internal/model"

// UserRepository 定义了用户相关的数据库操作接口
// 查找方法在记录不存在时返回 (nil, nil)
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	// UpdateSecurity 持久化密码哈希、失败计数、锁定与重置令牌字段
	UpdateSecurity(user *model.User) error
	Count() (int, error)
}
