package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUser_Debit 测试钱包扣款
func TestUser_Debit(t *testing.T) {
	t.Run("正常扣款", func(t *testing.T) {
		u := &User{ID: 1, Balance: 100000}

		err := u.Debit(30000)

		require.NoError(t, err)
		assert.Equal(t, int64(70000), u.Balance)
	})

	t.Run("余额不足不发生部分扣款", func(t *testing.T) {
		u := &User{ID: 1, Balance: 20000}

		err := u.Debit(30000)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, int64(20000), u.Balance, "失败时余额不应变化")
	})

	t.Run("金额必须大于0", func(t *testing.T) {
		u := &User{ID: 1, Balance: 100000}

		assert.ErrorIs(t, u.Debit(0), ErrInvalidAmount)
		assert.ErrorIs(t, u.Debit(-100), ErrInvalidAmount)
		assert.Equal(t, int64(100000), u.Balance)
	})

	t.Run("余额恰好等于金额时允许扣到0", func(t *testing.T) {
		u := &User{ID: 1, Balance: 50000}

		require.NoError(t, u.Debit(50000))
		assert.Equal(t, int64(0), u.Balance)
	})
}

// TestUser_Credit 测试钱包入账
func TestUser_Credit(t *testing.T) {
	u := &User{ID: 2, Balance: 500}

	require.NoError(t, u.Credit(100000))
	assert.Equal(t, int64(100500), u.Balance)

	assert.ErrorIs(t, u.Credit(0), ErrInvalidAmount)
	assert.ErrorIs(t, u.Credit(-1), ErrInvalidAmount)
	assert.Equal(t, int64(100500), u.Balance)
}

// TestGiveReferralBonus 测试推荐奖励发放
func TestGiveReferralBonus(t *testing.T) {
	t.Run("正常发放", func(t *testing.T) {
		referrer := &User{ID: 10, Balance: 0, TotalReferred: 0}
		newUser := &User{ID: 20, Balance: 0}

		ok := GiveReferralBonus(referrer, newUser)

		require.True(t, ok)
		assert.Equal(t, int64(ReferrerBonus), referrer.Balance)
		assert.Equal(t, int64(NewUserBonus), newUser.Balance)
		assert.Equal(t, 1, referrer.TotalReferred)
		require.NotNil(t, newUser.ReferredBy)
		assert.Equal(t, uint(10), *newUser.ReferredBy)
	})

	t.Run("不能自己推荐自己", func(t *testing.T) {
		u := &User{ID: 10, Balance: 0}

		ok := GiveReferralBonus(u, u)

		assert.False(t, ok)
		assert.Equal(t, int64(0), u.Balance)
		assert.Equal(t, 0, u.TotalReferred)
	})

	t.Run("达到上限后不再发放", func(t *testing.T) {
		referrer := &User{ID: 10, Balance: 300000, TotalReferred: MaxReferrals}
		newUser := &User{ID: 21, Balance: 0}

		ok := GiveReferralBonus(referrer, newUser)

		assert.False(t, ok)
		assert.Equal(t, int64(300000), referrer.Balance, "余额不应变化")
		assert.Equal(t, MaxReferrals, referrer.TotalReferred, "计数不应变化")
		assert.Equal(t, int64(0), newUser.Balance)
		assert.Nil(t, newUser.ReferredBy)
	})

	t.Run("连续推荐到第10次为止", func(t *testing.T) {
		referrer := &User{ID: 10}

		for i := 0; i < MaxReferrals; i++ {
			newUser := &User{ID: uint(100 + i)}
			require.True(t, GiveReferralBonus(referrer, newUser), "第%d次应成功", i+1)
		}
		// 第11次
		extra := &User{ID: 999}
		assert.False(t, GiveReferralBonus(referrer, extra))
		assert.Equal(t, MaxReferrals, referrer.TotalReferred)
		assert.Equal(t, int64(MaxReferrals*ReferrerBonus), referrer.Balance)
	})
}

// TestGenerateReferralCode 测试推荐码格式
func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode()

	assert.Len(t, code, 11)
	assert.Equal(t, "REF", code[:3])
}
