package user

import (
	"fmt"
	"math/rand"
)

// 推荐奖励规则
// 业务规则来源：运营活动配置，金额为最小货币单位
const (
	// MaxReferrals 每个推荐人最多可获得奖励的成功推荐次数
	MaxReferrals = 10

	// ReferrerBonus 推荐人获得的奖励金额
	ReferrerBonus = 30000

	// NewUserBonus 被推荐的新用户获得的奖励金额
	NewUserBonus = 20000
)

// GiveReferralBonus 发放推荐奖励
//
// 前置条件（任一不满足则返回false，且不发生任何变更）：
// 1. 不能自己推荐自己
// 2. 推荐人的成功推荐次数未达到MaxReferrals上限
//
// 成功时对两个内存实体做如下变更（持久化由调用方事务统一提交，
// 必须与新用户注册在同一事务中，失败时连同注册一起回滚）：
// - 推荐人余额 += ReferrerBonus，成功推荐次数 +1
// - 新用户余额 += NewUserBonus，ReferredBy指向推荐人
//
// 返回bool而非error是有意为之：调用方自行决定注册是否失败还是仅跳过奖励
func GiveReferralBonus(referrer, newUser *User) bool {
	if referrer == nil || newUser == nil {
		return false
	}
	if referrer.ID == newUser.ID {
		return false
	}
	if referrer.TotalReferred >= MaxReferrals {
		return false
	}

	// 奖励金额固定为正数，Credit不会失败；防御性检查保持完整
	if err := referrer.Credit(ReferrerBonus); err != nil {
		return false
	}
	if err := newUser.Credit(NewUserBonus); err != nil {
		// 回退推荐人的入账，保证"要么全成功要么全不变"
		referrer.Balance -= ReferrerBonus
		return false
	}

	referrer.TotalReferred++
	newUser.ReferredBy = &referrer.ID
	return true
}

// referralCodeChars 推荐码字符集（去掉易混淆的0/O、1/I/L）
const referralCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateReferralCode 生成推荐码
// 格式：REF + 8位随机字符，如REF7KQ2M9XW
// 唯一性由数据库唯一索引兜底（冲突概率极低，注册失败可重试）
func GenerateReferralCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = referralCodeChars[rand.Intn(len(referralCodeChars))]
	}
	return fmt.Sprintf("REF%s", b)
}
