package mysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// TestTranslateUserDuplicate 用户表唯一键冲突按索引名区分
func TestTranslateUserDuplicate(t *testing.T) {
	emailDup := errors.New("Error 1062 (23000): Duplicate entry 'a@test.com' for key 'users.idx_users_email'")
	assert.ErrorIs(t, translateUserDuplicate(emailDup), user.ErrEmailDuplicate)

	// 生成的推荐码撞码是随机冲突，重试即可，不能报成邮箱重复
	codeDup := errors.New("Error 1062 (23000): Duplicate entry 'AB12CD34' for key 'users.idx_users_referral_code'")
	assert.ErrorIs(t, translateUserDuplicate(codeDup), apperrors.ErrConcurrencyConflict)

	// 非唯一键错误不做转换
	assert.Nil(t, translateUserDuplicate(errors.New("connection refused")))
	assert.Nil(t, translateUserDuplicate(nil))
}
