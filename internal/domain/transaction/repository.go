package transaction

import (
	"context"
)

// ListParams 交易列表查询参数
type ListParams struct {
	UserID   uint    // 用户ID
	Role     Role    // 以买家还是卖家身份查询
	Status   *Status // 状态过滤（nil表示不过滤）
	Page     int     // 页码（从1开始）
	PageSize int     // 每页数量
}

// Repository 交易仓储接口（依赖倒置原则）
// 设计说明：
// 1. 由domain层定义接口，infrastructure层实现
// 2. 支持事务操作（通过context传递事务DB）
// 3. 没有Delete：交易是财务记录，创建后只允许状态流转
type Repository interface {
	// Create 创建交易
	Create(ctx context.Context, t *Transaction) error

	// FindByID 根据ID查找交易
	FindByID(ctx context.Context, id uint) (*Transaction, error)

	// FindByCode 根据交易号查找交易
	FindByCode(ctx context.Context, code string) (*Transaction, error)

	// LockByID 悲观锁查询交易（状态变更前锁行，防止并发流转互相覆盖）
	LockByID(ctx context.Context, id uint) (*Transaction, error)

	// Update 更新交易（仅用于状态流转）
	Update(ctx context.Context, t *Transaction) error

	// ListByUser 按买家/卖家身份查询交易列表，可选状态过滤
	ListByUser(ctx context.Context, params ListParams) ([]*Transaction, int64, error)
}
