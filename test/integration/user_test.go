package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 用户模块集成测试
// 覆盖注册、推荐奖励、登录登出的完整HTTP链路

// TestUserRegister 测试用户注册
func TestUserRegister(t *testing.T) {
	RequireIntegrationEnv(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("normal_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试用户",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.Equal(t, 0, resp.Code, "注册应该成功")

		var data RegisterData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err, "解析响应数据失败")

		assert.NotZero(t, data.UserID, "用户ID应该大于0")
		assert.Equal(t, email, data.Email)
		assert.Zero(t, data.Balance, "无推荐码注册余额应为0")
		assert.NotEmpty(t, data.ReferralCode, "应该生成本人推荐码")
	})

	t.Run("重复邮箱注册应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate_user")
		registerReq := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "测试用户1",
		}

		resp1 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		require.Equal(t, 0, resp1.Code, "第一次注册应该成功")

		registerReq["nickname"] = "测试用户2"
		resp2 := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp2.Code, "重复邮箱注册应该失败")
		assert.Contains(t, resp2.Message, "邮箱")
	})

	t.Run("弱密码应失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":    GenerateTestEmail("weak_pwd"),
			"password": "12345678", // 纯数字
			"nickname": "测试用户",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "纯数字密码应该被拒绝")
	})
}

// TestReferralBonus 测试推荐奖励
func TestReferralBonus(t *testing.T) {
	RequireIntegrationEnv(t)

	t.Run("携带推荐码注册双方都获得奖励", func(t *testing.T) {
		referrer, referrerToken := RegisterTestUser(t, "referrer", "")
		require.NotEmpty(t, referrer.ReferralCode)

		newbie, _ := RegisterTestUser(t, "newbie", referrer.ReferralCode)
		assert.EqualValues(t, 20000, newbie.Balance, "新用户应获得200.00奖励")

		referrerProfile := GetProfile(t, referrerToken)
		assert.EqualValues(t, 30000, referrerProfile.Balance, "推荐人应获得300.00奖励")
		assert.Equal(t, 1, referrerProfile.TotalReferred)
	})

	t.Run("无效推荐码注册失败", func(t *testing.T) {
		registerReq := map[string]string{
			"email":         GenerateTestEmail("bad_referral"),
			"password":      "Test1234",
			"nickname":      "测试用户",
			"referral_code": "REFNOTEXIST",
		}

		resp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
		assert.NotEqual(t, 0, resp.Code, "无效推荐码应导致注册失败")
	})
}

// TestUserLogout 测试登出后Token失效
func TestUserLogout(t *testing.T) {
	RequireIntegrationEnv(t)

	_, token := RegisterTestUser(t, "logout_user", "")

	// 登出前可以访问
	resp := GetJSON(t, BaseURL+"/users/profile", token)
	require.Equal(t, 0, resp.Code, "登出前应可访问个人信息")

	logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
	require.Equal(t, 0, logoutResp.Code, "登出失败: %s", logoutResp.Message)

	// 登出后Token进入黑名单
	resp = GetJSON(t, BaseURL+"/users/profile", token)
	assert.NotEqual(t, 0, resp.Code, "登出后Token应失效")
}
