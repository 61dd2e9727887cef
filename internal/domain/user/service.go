package user

import (
	"context"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// TxManager 显式事务边界（依赖倒置）
// 设计说明：
// 1. 由infrastructure/persistence/mysql.TxManager实现
// 2. 注册+推荐奖励必须在同一事务中提交，隐式的全局session被
//    替换为由编排方持有、组件内传递的显式工作单元
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、推荐奖励编排）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 用户注册（可携带推荐码）
	// referralCode为空表示无推荐；推荐码不存在时注册失败（ErrInvalidReferral）；
	// 推荐人达到上限时仅跳过奖励，注册仍然成功
	Register(ctx context.Context, email, password, nickname, referralCode string) (*User, error)

	// Login 用户登录
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error
}

type service struct {
	repo Repository
	tx   TxManager
}

// NewService 创建用户服务
func NewService(repo Repository, tx TxManager) Service {
	return &service{repo: repo, tx: tx}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验；密码强度校验（8-20位，包含字母和数字）
// 2. 密码bcrypt加密（cost=12）；邮箱唯一性由数据库UNIQUE索引保证
// 3. 携带推荐码时，用户创建与奖励发放在同一事务中提交：
//    任一步失败则整体回滚，不会出现"用户已建但奖励状态不一致"的中间态
func (s *service) Register(ctx context.Context, email, password, nickname, referralCode string) (*User, error) {
	// 1. 参数校验
	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	if len(nickname) < 2 || len(nickname) > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}

	// 2. 密码加密
	// bcrypt自动加盐，cost=12平衡安全性与性能
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 3. 创建用户实体（每个用户注册时生成自己的推荐码）
	newUser := NewUser(email, string(hashedPassword), nickname, GenerateReferralCode())

	// 4. 事务内：创建用户 + 发放推荐奖励
	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, newUser); err != nil {
			return err // Repository已转换为业务错误（如ErrEmailDuplicate）
		}

		if referralCode == "" {
			return nil
		}

		// 校验推荐码：不存在则整个注册失败
		referrer, err := s.repo.FindByReferralCode(txCtx, referralCode)
		if err != nil {
			if err == ErrUserNotFound {
				return ErrInvalidReferral
			}
			return err
		}

		// 锁定推荐人行后重读，防止并发注册同时递增TotalReferred越过上限
		referrer, err = s.repo.LockByID(txCtx, referrer.ID)
		if err != nil {
			return err
		}

		// 奖励引擎返回false（自我推荐/达到上限）时仅跳过奖励，注册继续
		if !GiveReferralBonus(referrer, newUser) {
			return nil
		}

		if err := s.repo.Update(txCtx, referrer); err != nil {
			return err
		}
		return s.repo.Update(txCtx, newUser)
	})
	if err != nil {
		return nil, err
	}

	return newUser, nil
}

// Login 用户登录
// 业务规则：邮箱必须存在，密码必须正确
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err // Repository已转换为ErrUserNotFound
	}

	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}

	return u, nil
}

// ValidatePassword 验证密码
// 说明：登录时使用，验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

// isValidEmail 邮箱格式校验
// 简单的正则校验，生产环境可使用更严格的RFC 5322标准
func isValidEmail(email string) bool {
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	matched, _ := regexp.MatchString(pattern, email)
	return matched
}

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}

	return nil
}
