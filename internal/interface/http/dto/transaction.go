package dto

// CreateTransactionRequest HTTP下单请求
// 注意：不接受价格字段，成交金额以服务端锁定的价格为准
type CreateTransactionRequest struct {
	BookID        uint   `json:"book_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1,max=999"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=balance transfer cod"`
	Address       string `json:"address" binding:"max=255"`
	Courier       string `json:"courier" binding:"max=50"`
}

// UpdateTransactionStatusRequest HTTP状态流转请求
// role声明操作者以买家还是卖家身份操作，服务端会校验归属
type UpdateTransactionStatusRequest struct {
	Role   string `json:"role" binding:"required,oneof=customer seller"`
	Status string `json:"status" binding:"required"` // paid/processing/shipped/delivered/received/cancelled
}

// ListTransactionsRequest HTTP交易列表请求（query参数）
type ListTransactionsRequest struct {
	Role     string `form:"role" binding:"omitempty,oneof=customer seller"`
	Status   string `form:"status" binding:"omitempty,max=20"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
