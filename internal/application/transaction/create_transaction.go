package transaction

import (
	"context"
	"log"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/transaction"
	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
	"github.com/SaepulHayat/bookmarket/pkg/tracing"
)

// TxManager 事务管理器接口
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 交易事件发布接口（RabbitMQ实现，可为nil表示不发事件）
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}

// CreateTransactionUseCase 创建交易用例
//
// 这是整个项目最核心的用例：一次下单涉及
// 库存扣减、钱包结算、交易落库三个动作，必须在同一事务内完成
type CreateTransactionUseCase struct {
	txRepo    transaction.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewCreateTransactionUseCase 创建下单用例
func NewCreateTransactionUseCase(
	txRepo transaction.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		txRepo:    txRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// CreateTransactionRequest 下单请求DTO
type CreateTransactionRequest struct {
	CustomerID    uint   // 买家用户ID（从JWT中提取）
	BookID        uint   // 图书ID
	Quantity      int    // 购买数量
	PaymentMethod string // balance/transfer/cod
	Address       string // 收货地址
	Courier       string // 快递公司
}

// CreateTransactionResponse 下单响应DTO
type CreateTransactionResponse struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	Amount        int64  `json:"amount"`
	AmountYuan    string `json:"amount_yuan"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// TransactionCreatedEvent 交易创建事件
type TransactionCreatedEvent struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	CustomerID    uint   `json:"customer_id"`
	SellerID      uint   `json:"seller_id"`
	BookID        uint   `json:"book_id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

// Execute 执行下单用例
//
// 防超卖与钱包结算的完整流程（悲观锁）：
//  1. SELECT FOR UPDATE 锁定图书行，校验库存、拿到"锁定时的价格"
//  2. 金额 = 锁定价格 × 数量（不信任前端传价，防改价攻击）
//  3. 余额支付时锁定买卖双方钱包行（按ID升序），扣买家、加卖家、扣减库存
//  4. 非余额支付停留在pending，钱包与库存都不动
//  5. 落库交易，COMMIT释放锁；任一步失败则整体回滚，余额与库存都不变
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "bookmarket", "CreateTransaction")
	defer span.End()

	if req.Quantity <= 0 {
		return nil, transaction.ErrInvalidQuantity
	}
	if !transaction.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, transaction.ErrInvalidPaymentMethod
	}

	var result *transaction.Transaction
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 锁定图书行：其他事务必须等待当前事务COMMIT/ROLLBACK后才能扣同一本书的库存
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// 不能购买自己上架的图书
		if b.SellerID == req.CustomerID {
			return transaction.ErrSelfPurchase
		}

		// 必须在锁定后检查库存，否则并发扣减会超卖
		if b.Stock < req.Quantity {
			return book.ErrInsufficientStock
		}

		// 金额永远按数据库中的当前价格计算
		amount := b.Price * int64(req.Quantity)

		trx, err := transaction.NewTransaction(
			transaction.GenerateCode(),
			req.CustomerID,
			b.SellerID,
			b.ID,
			req.Quantity,
			amount,
			req.PaymentMethod,
			transaction.ShippingInfo{Address: req.Address, Courier: req.Courier},
		)
		if err != nil {
			return err
		}

		// 余额支付：在同一事务内完成钱包结算与库存扣减
		// 两行用户锁按ID升序获取，双向下单（A买B的书、B同时买A的书）不会互相持锁等待
		if req.PaymentMethod == transaction.PaymentBalance {
			firstID, secondID := req.CustomerID, b.SellerID
			if firstID > secondID {
				firstID, secondID = secondID, firstID
			}
			first, err := uc.userRepo.LockByID(txCtx, firstID)
			if err != nil {
				return err
			}
			second, err := uc.userRepo.LockByID(txCtx, secondID)
			if err != nil {
				return err
			}
			customer, seller := first, second
			if customer.ID != req.CustomerID {
				customer, seller = second, first
			}

			// 余额不足时整单失败，不做部分扣减
			if err := customer.Debit(amount); err != nil {
				return err
			}
			if err := seller.Credit(amount); err != nil {
				return err
			}

			if err := uc.userRepo.Update(txCtx, customer); err != nil {
				return err
			}
			if err := uc.userRepo.Update(txCtx, seller); err != nil {
				return err
			}

			// 扣减库存（WHERE stock >= ?，并发兜底）
			// 只有结算成功的订单占用库存；pending订单不预占
			if err := uc.bookRepo.UpdateStock(txCtx, b.ID, -req.Quantity); err != nil {
				return err
			}

			if err := trx.MarkPaid(); err != nil {
				return err
			}
		}

		if err := uc.txRepo.Create(txCtx, trx); err != nil {
			return err
		}

		result = trx
		return nil
	})
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return nil, err
	}

	metrics.TransactionsCreated.WithLabelValues(result.PaymentMethod).Inc()
	metrics.TransactionAmount.Observe(float64(result.Amount) / 100.0)

	// 事件发布在事务提交后进行，失败只记录日志，不影响下单结果
	if uc.publisher != nil {
		event := TransactionCreatedEvent{
			TransactionID: result.ID,
			Code:          result.Code,
			CustomerID:    result.CustomerID,
			SellerID:      result.SellerID,
			BookID:        result.BookID,
			Amount:        result.Amount,
			Status:        result.Status.String(),
		}
		if err := uc.publisher.Publish("transaction.created", event); err != nil {
			log.Printf("发布transaction.created事件失败: %v", err)
		}
	}

	return uc.toResponse(result), nil
}

func (uc *CreateTransactionUseCase) toResponse(trx *transaction.Transaction) *CreateTransactionResponse {
	return &CreateTransactionResponse{
		TransactionID: trx.ID,
		Code:          trx.Code,
		Amount:        trx.Amount,
		AmountYuan:    formatPrice(trx.Amount),
		Status:        trx.Status.String(),
		CreatedAt:     trx.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
