package transaction

import (
	"context"
	"log"

	"github.com/SaepulHayat/bookmarket/internal/domain/transaction"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
	"github.com/SaepulHayat/bookmarket/pkg/tracing"
)

// UpdateStatusUseCase 交易状态流转用例
type UpdateStatusUseCase struct {
	txRepo    transaction.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewUpdateStatusUseCase 创建状态流转用例
func NewUpdateStatusUseCase(txRepo transaction.Repository, txManager TxManager, publisher EventPublisher) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		txRepo:    txRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// UpdateStatusRequest 状态流转请求DTO
type UpdateStatusRequest struct {
	TransactionID uint   // 交易ID
	ActorID       uint   // 操作者用户ID（从JWT中提取）
	Role          string // customer/seller
	TargetStatus  string // 目标状态（received视为delivered）
}

// UpdateStatusResponse 状态流转响应DTO
type UpdateStatusResponse struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	From          string `json:"from"`
	To            string `json:"to"`
	UpdatedAt     string `json:"updated_at"`
}

// TransactionStatusChangedEvent 交易状态变更事件
type TransactionStatusChangedEvent struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	From          string `json:"from"`
	To            string `json:"to"`
	ActorID       uint   `json:"actor_id"`
	Role          string `json:"role"`
}

// Execute 执行状态流转
//
// 状态机校验全部委托给领域实体：
// 归属 → 角色权限 → 流转合法性，任一不通过都不落库
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "bookmarket", "UpdateTransactionStatus")
	defer span.End()

	target, err := transaction.ParseStatus(req.TargetStatus)
	if err != nil {
		return nil, err
	}
	role, err := transaction.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	var resp *UpdateStatusResponse
	var event TransactionStatusChangedEvent
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 加锁读取，防止两个操作者并发流转同一笔交易
		trx, err := uc.txRepo.LockByID(txCtx, req.TransactionID)
		if err != nil {
			return err
		}

		from := trx.Status
		if err := trx.TransitionTo(target, req.ActorID, role); err != nil {
			return err
		}

		if err := uc.txRepo.Update(txCtx, trx); err != nil {
			return err
		}

		resp = &UpdateStatusResponse{
			TransactionID: trx.ID,
			Code:          trx.Code,
			From:          from.String(),
			To:            trx.Status.String(),
			UpdatedAt:     trx.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		event = TransactionStatusChangedEvent{
			TransactionID: trx.ID,
			Code:          trx.Code,
			From:          from.String(),
			To:            trx.Status.String(),
			ActorID:       req.ActorID,
			Role:          string(role),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionStatusChanges.WithLabelValues(resp.From, resp.To).Inc()

	if uc.publisher != nil {
		if err := uc.publisher.Publish("transaction.status_changed", event); err != nil {
			log.Printf("发布transaction.status_changed事件失败: %v", err)
		}
	}

	return resp, nil
}
