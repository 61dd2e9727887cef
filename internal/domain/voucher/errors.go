package voucher

import (
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// 代金券领域错误定义
var (
	ErrVoucherNotFound   = apperrors.New(apperrors.ErrCodeVoucherNotFound, "代金券不存在")
	ErrVoucherInactive   = apperrors.New(apperrors.ErrCodeVoucherExhausted, "代金券已失效")
	ErrVoucherExhausted  = apperrors.New(apperrors.ErrCodeVoucherExhausted, "代金券已被兑完")
	ErrInvalidCode       = apperrors.New(apperrors.ErrCodeInvalidParams, "券码不能为空")
	ErrInvalidAmount     = apperrors.New(apperrors.ErrCodeInvalidParams, "面额必须大于0")
	ErrInvalidUsageLimit = apperrors.New(apperrors.ErrCodeInvalidParams, "使用上限必须大于0")
)
