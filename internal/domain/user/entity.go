package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，同时承载钱包余额（Balance）与推荐关系
// 2. 余额使用int64存储最小货币单位（避免浮点数精度问题）
// 3. Balance只能通过Credit/Debit变更，任何面向客户端的更新路径都不得直接写余额
// 4. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID            uint
	Email         string
	Password      string // bcrypt哈希值
	Nickname      string
	Balance       int64  // 钱包余额（最小货币单位）
	ReferralCode  string // 本人的推荐码（注册时生成，唯一）
	ReferredBy    *uint  // 推荐人用户ID（至多一个）
	TotalReferred int    // 成功推荐人数
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname, referralCode string) *User {
	now := time.Now()
	return &User{
		Email:        email,
		Password:     hashedPassword,
		Nickname:     nickname,
		Balance:      0,
		ReferralCode: referralCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Credit 入账（领域行为）
// 业务规则：金额必须>0
// 只修改内存实体，持久化由调用方的事务边界统一提交，
// 保证 扣款+入账+扣库存+状态变更 作为一个原子单元
func (u *User) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	u.Balance += amount
	u.UpdatedAt = time.Now()
	return nil
}

// Debit 扣款（领域行为）
// 业务规则：
// 1. 金额必须>0
// 2. 余额不足时返回ErrInsufficientBalance，且不发生部分扣款
func (u *User) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if u.Balance < amount {
		return ErrInsufficientBalance
	}
	u.Balance -= amount
	u.UpdatedAt = time.Now()
	return nil
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
