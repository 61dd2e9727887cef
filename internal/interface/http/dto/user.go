package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=20"`
	Nickname     string `json:"nickname" binding:"required,min=2,max=50"`
	ReferralCode string `json:"referral_code" binding:"omitempty,max=16"` // 可选，推荐人的推荐码
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
