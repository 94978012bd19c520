package mysql

import (
	"database/sql"
	"socialfeed-backend/internal/model"
	"socialfeed-backend/internal/util"
	"time"

	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, name, email, password_hash, profile_image,
	failed_login_attempts, locked_until, last_login_at,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var profileImage, resetTokenHash sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &profileImage,
		&user.FailedLoginAttempts, &user.LockedUntil, &user.LastLoginAt,
		&resetTokenHash, &user.ResetTokenExpiresAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	user.ProfileImage = profileImage.String
	user.ResetTokenHash = resetTokenHash.String
	return &user, nil
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, profile_image, created_at, updated_at)
              VALUES (?, ?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, user.Name, user.Email, user.PasswordHash, user.ProfileImage)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("email", user.Email))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRow(query, id))
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRow(query, email))
}

// Update 更新用户资料字段
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET name = ?, email = ?, profile_image = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Email, user.ProfileImage, time.Now(), user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
	}
	return err
}

// UpdateSecurity 更新密码哈希与安全相关字段
func (r *userRepository) UpdateSecurity(user *model.User) error {
	var resetTokenHash interface{}
	if user.ResetTokenHash != "" {
		resetTokenHash = user.ResetTokenHash
	}
	_, err := r.db.Exec(`
		UPDATE users
		SET password_hash = ?, failed_login_attempts = ?, locked_until = ?,
		    last_login_at = ?, reset_token_hash = ?, reset_token_expires_at = ?,
		    updated_at = ?
		WHERE id = ?`,
		user.PasswordHash, user.FailedLoginAttempts, user.LockedUntil,
		user.LastLoginAt, resetTokenHash, user.ResetTokenExpiresAt,
		time.Now(), user.ID)
	if err != nil {
		util.Logger.Error("更新用户安全字段失败", zap.Error(err), zap.Int("user_id", user.ID))
	}
	return err
}

// Count 返回用户总数
func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
