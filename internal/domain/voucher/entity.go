package voucher

import (
	"time"
)

// Voucher 代金券实体
//
// 业务规则：
// 1. 兑换成功后向用户钱包充入固定金额（单位：分）
// 2. 每张券有总使用上限，用满后自动失效
// 3. 下架（IsActive=false）的券不可兑换
type Voucher struct {
	ID         uint
	Code       string
	Amount     int64
	UsageLimit int
	UsageCount int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewVoucher 创建代金券
func NewVoucher(code string, amount int64, usageLimit int) (*Voucher, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if usageLimit <= 0 {
		return nil, ErrInvalidUsageLimit
	}
	now := time.Now()
	return &Voucher{
		Code:       code,
		Amount:     amount,
		UsageLimit: usageLimit,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Redeem 兑换一次
// 用量达到上限的最后一次兑换会把券置为失效
func (v *Voucher) Redeem() error {
	if !v.IsActive {
		return ErrVoucherInactive
	}
	if v.UsageCount >= v.UsageLimit {
		return ErrVoucherExhausted
	}
	v.UsageCount++
	if v.UsageCount >= v.UsageLimit {
		v.IsActive = false
	}
	v.UpdatedAt = time.Now()
	return nil
}

// Deactivate 手动下架
func (v *Voucher) Deactivate() {
	v.IsActive = false
	v.UpdatedAt = time.Now()
}
