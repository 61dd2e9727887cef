package user

import (
	"context"
	"log"
	"time"

	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	"github.com/SaepulHayat/bookmarket/pkg/jwt"
)

// SessionStore 会话存储接口（Redis实现，带熔断保护）
type SessionStore interface {
	// SaveSession 保存登录会话
	SaveSession(ctx context.Context, userID uint, token string, expire time.Duration) error
	// DeleteSession 删除登录会话（登出）
	DeleteSession(ctx context.Context, userID uint) error
	// BlacklistToken 将Token加入黑名单直至其自然过期
	BlacklistToken(ctx context.Context, token string, expire time.Duration) error
}

// LoginUseCase 用户登录用例
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	sessions    SessionStore
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager, sessions SessionStore) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		sessions:    sessions,
	}
}

// LoginRequest 登录请求DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应DTO
type LoginResponse struct {
	UserID       uint   `json:"user_id"`
	Nickname     string `json:"nickname"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Execute 执行登录
// 会话写入Redis失败时不阻断登录：JWT本身自包含，Redis只用于主动踢出
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Nickname)
	if err != nil {
		return nil, err
	}

	if uc.sessions != nil {
		expire := time.Duration(pair.ExpiresIn) * time.Second
		if err := uc.sessions.SaveSession(ctx, u.ID, pair.AccessToken, expire); err != nil {
			log.Printf("保存会话失败（不阻断登录）: %v", err)
		}
	}

	return &LoginResponse{
		UserID:       u.ID,
		Nickname:     u.Nickname,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessions SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions}
}

// Execute 执行登出：删除会话并把Token拉黑至自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, token string, tokenTTL time.Duration) error {
	if uc.sessions == nil {
		return nil
	}
	if err := uc.sessions.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessions.BlacklistToken(ctx, token, tokenTTL)
}

// GetProfileUseCase 个人信息查询用例
type GetProfileUseCase struct {
	userRepo user.Repository
}

// NewGetProfileUseCase 创建个人信息用例
func NewGetProfileUseCase(userRepo user.Repository) *GetProfileUseCase {
	return &GetProfileUseCase{userRepo: userRepo}
}

// ProfileResponse 个人信息DTO
type ProfileResponse struct {
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	Balance       int64  `json:"balance"`
	ReferralCode  string `json:"referral_code"`
	TotalReferred int    `json:"total_referred"`
	CreatedAt     string `json:"created_at"`
}

// Execute 查询个人信息（含钱包余额与推荐统计）
func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uint) (*ProfileResponse, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{
		UserID:        u.ID,
		Email:         u.Email,
		Nickname:      u.Nickname,
		Balance:       u.Balance,
		ReferralCode:  u.ReferralCode,
		TotalReferred: u.TotalReferred,
		CreatedAt:     u.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
