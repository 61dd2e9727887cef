package transaction

import (
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// 交易领域错误定义
var (
	// ErrTransactionNotFound 交易不存在
	ErrTransactionNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "交易不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStatus, "交易状态不允许此操作")

	// ErrUnauthorizedTransition 无权执行此状态变更（角色或归属不匹配）
	ErrUnauthorizedTransition = apperrors.New(apperrors.ErrCodeUnauthorizedTransition, "无权执行此状态变更")

	// ErrInvalidStatus 无法识别的状态值
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidStatus, "无法识别的交易状态")

	// ErrInvalidRole 无法识别的角色
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "角色必须是customer或seller")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidAmount 交易金额不合法
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "交易金额必须大于0")

	// ErrInvalidPaymentMethod 不支持的支付方式
	ErrInvalidPaymentMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的支付方式")

	// ErrSelfPurchase 不能购买自己上架的图书
	ErrSelfPurchase = apperrors.New(apperrors.ErrCodeBusinessError, "不能购买自己上架的图书")
)
