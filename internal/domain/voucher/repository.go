package voucher

import (
	"context"
)

// Repository 代金券仓储接口
type Repository interface {
	Create(ctx context.Context, v *Voucher) error
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	// LockByCode 按券码加悲观锁读取，须在事务内调用
	LockByCode(ctx context.Context, code string) (*Voucher, error)
	Update(ctx context.Context, v *Voucher) error
}
