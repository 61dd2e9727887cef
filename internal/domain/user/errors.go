package user

import (
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrEmailDuplicate 邮箱已存在
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	// ErrInvalidAmount 无效的金额
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "金额必须大于0")

	// ErrInsufficientBalance 钱包余额不足
	ErrInsufficientBalance = apperrors.New(apperrors.ErrCodeInsufficientBalance, "钱包余额不足")

	// ErrInvalidReferral 无效的推荐码
	ErrInvalidReferral = apperrors.New(apperrors.ErrCodeInvalidReferral, "无效的推荐码")
)
