package dto

// RedeemVoucherRequest HTTP代金券兑换请求
type RedeemVoucherRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}
