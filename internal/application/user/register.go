package user

import (
	"context"

	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
	"github.com/SaepulHayat/bookmarket/pkg/tracing"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求DTO
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=20"`
	Nickname     string `json:"nickname" binding:"required,min=2,max=50"`
	ReferralCode string `json:"referral_code"` // 可选，推荐人的推荐码
}

// RegisterResponse 注册响应DTO
type RegisterResponse struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	Balance      int64  `json:"balance"`       // 注册奖励后的钱包余额（分）
	ReferralCode string `json:"referral_code"` // 本人的推荐码
	CreatedAt    string `json:"created_at"`
}

// Execute 执行注册
// 推荐码不存在时注册失败；推荐人达到上限时仅跳过奖励
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "bookmarket", "Register")
	defer span.End()

	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname, req.ReferralCode)
	if err != nil {
		return nil, err
	}

	if u.ReferredBy != nil {
		metrics.ReferralBonuses.Inc()
	}

	return &RegisterResponse{
		UserID:       u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		Balance:      u.Balance,
		ReferralCode: u.ReferralCode,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
