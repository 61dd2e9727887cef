package voucher

import (
	"context"

	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	"github.com/SaepulHayat/bookmarket/internal/domain/voucher"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
	"github.com/SaepulHayat/bookmarket/pkg/tracing"
)

// TxManager 事务管理器接口
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RedeemVoucherUseCase 代金券兑换用例
//
// 兑换 = 券用量+1、用户钱包充值，两者在同一事务内提交
type RedeemVoucherUseCase struct {
	voucherRepo voucher.Repository
	userRepo    user.Repository
	txManager   TxManager
}

// NewRedeemVoucherUseCase 创建兑换用例
func NewRedeemVoucherUseCase(voucherRepo voucher.Repository, userRepo user.Repository, txManager TxManager) *RedeemVoucherUseCase {
	return &RedeemVoucherUseCase{
		voucherRepo: voucherRepo,
		userRepo:    userRepo,
		txManager:   txManager,
	}
}

// RedeemVoucherRequest 兑换请求DTO
type RedeemVoucherRequest struct {
	UserID uint   // 兑换人（从JWT中提取）
	Code   string // 券码
}

// RedeemVoucherResponse 兑换响应DTO
type RedeemVoucherResponse struct {
	Amount  int64 `json:"amount"`  // 充入金额（分）
	Balance int64 `json:"balance"` // 充值后的钱包余额（分）
}

// Execute 执行兑换
// 券行加悲观锁后再判断余量：并发兑换最后一张时只有一个事务能成功
func (uc *RedeemVoucherUseCase) Execute(ctx context.Context, req RedeemVoucherRequest) (*RedeemVoucherResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "bookmarket", "RedeemVoucher")
	defer span.End()

	var resp *RedeemVoucherResponse
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		v, err := uc.voucherRepo.LockByCode(txCtx, req.Code)
		if err != nil {
			return err
		}

		if err := v.Redeem(); err != nil {
			return err
		}

		u, err := uc.userRepo.LockByID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if err := u.Credit(v.Amount); err != nil {
			return err
		}

		if err := uc.voucherRepo.Update(txCtx, v); err != nil {
			return err
		}
		if err := uc.userRepo.Update(txCtx, u); err != nil {
			return err
		}

		resp = &RedeemVoucherResponse{Amount: v.Amount, Balance: u.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VouchersRedeemed.Inc()
	return resp, nil
}
