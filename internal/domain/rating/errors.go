package rating

import (
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// 评分领域错误定义
var (
	ErrRatingNotFound  = apperrors.New(apperrors.ErrCodeRatingNotFound, "评分不存在")
	ErrDuplicateRating = apperrors.New(apperrors.ErrCodeDuplicateEntry, "该图书已评分，请使用修改接口")
	ErrInvalidScore    = apperrors.New(apperrors.ErrCodeInvalidParams, "分值必须是1-5的整数")
	ErrUnauthorized    = apperrors.New(apperrors.ErrCodeForbidden, "无权操作他人的评分")
)
