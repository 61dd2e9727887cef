package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如邮箱重复），转换为业务错误
// 4. 所有方法通过getDB取DB：在事务上下文中自动使用事务连接
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 邮箱与推荐码的唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT），
// 捕获MySQL的Duplicate Entry错误并转换为业务错误
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if dup := translateUserDuplicate(err); dup != nil {
			return dup
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	// 回填自增ID（GORM自动填充）
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt

	return nil
}

// translateUserDuplicate 按冲突的索引名区分用户表的唯一键冲突
// users表有两个UNIQUE索引：email和referral_code。生成的推荐码
// 撞码属于可重试的随机冲突，不能报成"邮箱已注册"误导用户
func translateUserDuplicate(err error) error {
	if !isDuplicateError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "referral_code") {
		return apperrors.ErrConcurrencyConflict
	}
	return user.ErrEmailDuplicate
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// FindByReferralCode 根据推荐码查找用户
// 注册流程校验推荐码时使用，推荐码字段有UNIQUE索引
func (r *userRepository) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).Where("referral_code = ?", code).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}

	return toUserEntity(&model), nil
}

// LockByID 悲观锁查询用户（SELECT ... FOR UPDATE）
// 余额读-改-写前必须锁行，防止并发购买的丢失更新
// 必须在事务上下文中调用，否则FOR UPDATE不生效
func (r *userRepository) LockByID(ctx context.Context, id uint) (*user.User, error) {
	var model UserModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定用户失败")
	}

	return toUserEntity(&model), nil
}

// Update 更新用户信息
// 使用Save全量更新：余额、推荐计数等字段随实体一起写回
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	model.ID = u.ID
	model.CreatedAt = u.CreatedAt

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新用户失败")
	}

	u.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除用户（软删除）
// GORM的软删除：DELETE操作自动变成UPDATE deleted_at，
// 后续查询自动过滤deleted_at不为NULL的记录
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&UserModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除用户失败")
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// toUserModel 领域实体 → GORM模型
func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		Email:         u.Email,
		Password:      u.Password,
		Nickname:      u.Nickname,
		Balance:       u.Balance,
		ReferralCode:  u.ReferralCode,
		ReferredBy:    u.ReferredBy,
		TotalReferred: u.TotalReferred,
	}
}

// toUserEntity GORM模型 → 领域实体
// Repository的重要职责之一：隔离infrastructure层与domain层
func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:            model.ID,
		Email:         model.Email,
		Password:      model.Password,
		Nickname:      model.Nickname,
		Balance:       model.Balance,
		ReferralCode:  model.ReferralCode,
		ReferredBy:    model.ReferredBy,
		TotalReferred: model.TotalReferred,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
