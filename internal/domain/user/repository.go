package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 这样domain层不依赖任何外部框架（GORM、sqlx等）
// 4. 便于单元测试（Mock此接口）
type Repository interface {
	// Create 创建用户
	// 注意：如果邮箱已存在，应返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByReferralCode 根据推荐码查找用户
	// 注册时校验推荐码用，不存在返回ErrUserNotFound
	FindByReferralCode(ctx context.Context, code string) (*User, error)

	// LockByID 悲观锁查询用户（SELECT FOR UPDATE）
	// 余额属于热点共享资源，任何读-改-写必须先锁行，
	// 防止并发购买观察到过期余额（balance -= amount的丢失更新竞态）
	LockByID(ctx context.Context, id uint) (*User, error)

	// Update 更新用户信息（余额、推荐计数等字段随实体一起保存）
	Update(ctx context.Context, user *User) error

	// Delete 删除用户（软删除）
	Delete(ctx context.Context, id uint) error
}
