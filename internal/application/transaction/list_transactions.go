package transaction

import (
	"context"
	"fmt"

	"github.com/SaepulHayat/bookmarket/internal/domain/transaction"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// ListTransactionsUseCase 交易列表查询用例
type ListTransactionsUseCase struct {
	txRepo transaction.Repository
}

// NewListTransactionsUseCase 创建交易列表用例
func NewListTransactionsUseCase(txRepo transaction.Repository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{txRepo: txRepo}
}

// ListTransactionsRequest 列表请求DTO
type ListTransactionsRequest struct {
	UserID   uint   // 当前用户ID（从JWT中提取）
	Role     string // customer查我买的，seller查我卖的
	Status   string // 可选，按状态过滤
	Page     int
	PageSize int
}

// TransactionItem 列表项DTO
type TransactionItem struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	BookID        uint   `json:"book_id"`
	Quantity      int    `json:"quantity"`
	Amount        int64  `json:"amount"`
	AmountYuan    string `json:"amount_yuan"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

// ListTransactionsResponse 列表响应DTO
type ListTransactionsResponse struct {
	Total int64             `json:"total"`
	Items []TransactionItem `json:"items"`
}

// Execute 执行列表查询
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, req ListTransactionsRequest) (*ListTransactionsResponse, error) {
	role, err := transaction.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	params := transaction.ListParams{
		UserID:   req.UserID,
		Role:     role,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Status != "" {
		status, err := transaction.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		params.Status = &status
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 || params.PageSize > 100 {
		params.PageSize = 20
	}

	list, total, err := uc.txRepo.ListByUser(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]TransactionItem, len(list))
	for i, trx := range list {
		items[i] = TransactionItem{
			TransactionID: trx.ID,
			Code:          trx.Code,
			BookID:        trx.BookID,
			Quantity:      trx.Quantity,
			Amount:        trx.Amount,
			AmountYuan:    formatPrice(trx.Amount),
			Status:        trx.Status.String(),
			PaymentMethod: trx.PaymentMethod,
			CreatedAt:     trx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return &ListTransactionsResponse{Total: total, Items: items}, nil
}

// GetTransactionUseCase 交易详情查询用例
type GetTransactionUseCase struct {
	txRepo transaction.Repository
}

// NewGetTransactionUseCase 创建交易详情用例
func NewGetTransactionUseCase(txRepo transaction.Repository) *GetTransactionUseCase {
	return &GetTransactionUseCase{txRepo: txRepo}
}

// TransactionDetail 交易详情DTO
type TransactionDetail struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	CustomerID    uint   `json:"customer_id"`
	SellerID      uint   `json:"seller_id"`
	BookID        uint   `json:"book_id"`
	Quantity      int    `json:"quantity"`
	Amount        int64  `json:"amount"`
	AmountYuan    string `json:"amount_yuan"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	Address       string `json:"address"`
	Courier       string `json:"courier"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Execute 查询交易详情（只有交易双方可见）
func (uc *GetTransactionUseCase) Execute(ctx context.Context, transactionID, userID uint) (*TransactionDetail, error) {
	trx, err := uc.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !trx.IsCustomer(userID) && !trx.IsSeller(userID) {
		return nil, apperrors.ErrForbidden
	}
	return &TransactionDetail{
		TransactionID: trx.ID,
		Code:          trx.Code,
		CustomerID:    trx.CustomerID,
		SellerID:      trx.SellerID,
		BookID:        trx.BookID,
		Quantity:      trx.Quantity,
		Amount:        trx.Amount,
		AmountYuan:    formatPrice(trx.Amount),
		Status:        trx.Status.String(),
		PaymentMethod: trx.PaymentMethod,
		Address:       trx.Shipping.Address,
		Courier:       trx.Shipping.Courier,
		CreatedAt:     trx.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     trx.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// formatPrice 格式化金额（分→元）
func formatPrice(fen int64) string {
	return fmt.Sprintf("%.2f", float64(fen)/100.0)
}
