package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 交易模块集成测试
// 覆盖余额支付闭环、状态流转、取消、库存不足等完整链路
//
// 资金来源说明：注册本身不送钱，测试通过推荐奖励给买家充值
// （买家携带卖家推荐码注册，获得200.00新人奖励）

// setupTradingPair 准备一对可交易的买卖双方
// 返回：卖家Token、买家Token、买家初始余额
func setupTradingPair(t *testing.T) (sellerToken, buyerToken string, buyerBalance int64) {
	t.Helper()

	seller, sellerToken := RegisterTestUser(t, "seller", "")
	newbie, buyerToken := RegisterTestUser(t, "buyer", seller.ReferralCode)
	return sellerToken, buyerToken, newbie.Balance
}

// updateStatus 执行状态流转
func updateStatus(t *testing.T, token string, trxID uint, role, status string) *Response {
	t.Helper()
	return PutJSON(t, fmt.Sprintf("%s/transactions/%d/status", BaseURL, trxID),
		map[string]string{"role": role, "status": status}, token)
}

// TestBalancePurchaseFlow 余额支付交易闭环
func TestBalancePurchaseFlow(t *testing.T) {
	RequireIntegrationEnv(t)

	sellerToken, buyerToken, buyerBalance := setupTradingPair(t)
	require.EqualValues(t, 20000, buyerBalance, "买家应有新人奖励作为测试资金")

	sellerBefore := GetProfile(t, sellerToken)
	bookID := PublishTestBook(t, sellerToken, "Go程序设计语言", 5000, 3)

	// 1. 余额支付下单：2本 × 50.00 = 100.00
	createResp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       2,
		"payment_method": "balance",
		"address":        "上海市浦东新区测试路1号",
	}, buyerToken)
	require.Equal(t, 0, createResp.Code, "下单失败: %s", createResp.Message)

	var trx TransactionData
	require.NoError(t, json.Unmarshal(createResp.Data, &trx))
	assert.EqualValues(t, 10000, trx.Amount, "金额应为锁定价格×数量")
	assert.Equal(t, "paid", trx.Status, "余额支付应直接进入已支付")

	// 2. 资金结算校验：买家扣款、卖家入账
	buyerProfile := GetProfile(t, buyerToken)
	assert.EqualValues(t, buyerBalance-10000, buyerProfile.Balance, "买家余额应扣除货款")

	sellerProfile := GetProfile(t, sellerToken)
	assert.EqualValues(t, sellerBefore.Balance+10000, sellerProfile.Balance, "卖家应收到货款")

	// 3. 库存扣减校验
	bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	require.Equal(t, 0, bookResp.Code)
	var book BookData
	require.NoError(t, json.Unmarshal(bookResp.Data, &book))
	assert.Equal(t, 1, book.Stock, "库存应从3扣到1")

	// 4. 卖家推进发货链路
	for _, status := range []string{"processing", "shipped"} {
		resp := updateStatus(t, sellerToken, trx.TransactionID, "seller", status)
		require.Equal(t, 0, resp.Code, "卖家流转到%s失败: %s", status, resp.Message)
	}

	// 5. 买家确认收货（received是delivered的同义词）
	resp := updateStatus(t, buyerToken, trx.TransactionID, "customer", "received")
	require.Equal(t, 0, resp.Code, "确认收货失败: %s", resp.Message)

	var change StatusChangeData
	require.NoError(t, json.Unmarshal(resp.Data, &change))
	assert.Equal(t, "delivered", change.To)

	// 6. 终态后不允许继续流转
	resp = updateStatus(t, buyerToken, trx.TransactionID, "customer", "cancelled")
	assert.NotEqual(t, 0, resp.Code, "送达后不应允许取消")
}

// TestInsufficientBalance 余额不足时下单失败且不产生交易
func TestInsufficientBalance(t *testing.T) {
	RequireIntegrationEnv(t)

	sellerToken, buyerToken, buyerBalance := setupTradingPair(t)
	bookID := PublishTestBook(t, sellerToken, "昂贵的书", buyerBalance+10000, 5)

	resp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       1,
		"payment_method": "balance",
	}, buyerToken)
	assert.NotEqual(t, 0, resp.Code, "余额不足应下单失败")

	// 余额与库存都不应变化
	buyerProfile := GetProfile(t, buyerToken)
	assert.EqualValues(t, buyerBalance, buyerProfile.Balance, "失败的下单不应扣款")

	bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	var book BookData
	require.NoError(t, json.Unmarshal(bookResp.Data, &book))
	assert.Equal(t, 5, book.Stock, "失败的下单不应扣库存")
}

// TestInsufficientStock 库存不足时下单失败
func TestInsufficientStock(t *testing.T) {
	RequireIntegrationEnv(t)

	sellerToken, buyerToken, _ := setupTradingPair(t)
	bookID := PublishTestBook(t, sellerToken, "仅剩一本", 1000, 1)

	resp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       2,
		"payment_method": "balance",
	}, buyerToken)
	assert.NotEqual(t, 0, resp.Code, "库存不足应下单失败")
	assert.Contains(t, resp.Message, "库存")
}

// TestSelfPurchaseRejected 不能购买自己上架的图书
func TestSelfPurchaseRejected(t *testing.T) {
	RequireIntegrationEnv(t)

	_, sellerToken := RegisterTestUser(t, "self_seller", "")
	bookID := PublishTestBook(t, sellerToken, "自己的书", 1000, 5)

	resp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       1,
		"payment_method": "cod",
	}, sellerToken)
	assert.NotEqual(t, 0, resp.Code, "自购应被拒绝")
}

// TestCustomerCancel 买家在发货前取消
func TestCustomerCancel(t *testing.T) {
	RequireIntegrationEnv(t)

	sellerToken, buyerToken, _ := setupTradingPair(t)
	bookID := PublishTestBook(t, sellerToken, "会被取消的书", 3000, 2)

	// 货到付款下单停在pending
	createResp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       1,
		"payment_method": "cod",
	}, buyerToken)
	require.Equal(t, 0, createResp.Code, "下单失败: %s", createResp.Message)

	var trx TransactionData
	require.NoError(t, json.Unmarshal(createResp.Data, &trx))
	assert.Equal(t, "pending", trx.Status, "非余额支付应停在待支付")

	// pending订单不预占库存
	bookResp := GetJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), "")
	var b BookData
	require.NoError(t, json.Unmarshal(bookResp.Data, &b))
	assert.Equal(t, 2, b.Stock, "非余额下单不应扣减库存")

	// 买家取消
	resp := updateStatus(t, buyerToken, trx.TransactionID, "customer", "cancelled")
	require.Equal(t, 0, resp.Code, "取消失败: %s", resp.Message)

	// 取消后卖家无法推进
	resp = updateStatus(t, sellerToken, trx.TransactionID, "seller", "processing")
	assert.NotEqual(t, 0, resp.Code, "已取消的交易不应允许推进")
}

// TestUnauthorizedStatusChange 非交易参与方无法流转状态
func TestUnauthorizedStatusChange(t *testing.T) {
	RequireIntegrationEnv(t)

	sellerToken, buyerToken, _ := setupTradingPair(t)
	_, strangerToken := RegisterTestUser(t, "stranger", "")

	bookID := PublishTestBook(t, sellerToken, "别人的交易", 2000, 2)
	createResp := PostJSON(t, BaseURL+"/transactions", map[string]interface{}{
		"book_id":        bookID,
		"quantity":       1,
		"payment_method": "balance",
	}, buyerToken)
	require.Equal(t, 0, createResp.Code, "下单失败: %s", createResp.Message)

	var trx TransactionData
	require.NoError(t, json.Unmarshal(createResp.Data, &trx))

	// 路人冒充卖家
	resp := updateStatus(t, strangerToken, trx.TransactionID, "seller", "processing")
	assert.NotEqual(t, 0, resp.Code, "路人不应能操作交易")

	// 买家不能替卖家发货
	resp = updateStatus(t, buyerToken, trx.TransactionID, "customer", "shipped")
	assert.NotEqual(t, 0, resp.Code, "买家不应能执行发货")

	// 路人也看不到交易详情
	detailResp := GetJSON(t, fmt.Sprintf("%s/transactions/%d", BaseURL, trx.TransactionID), strangerToken)
	assert.NotEqual(t, 0, detailResp.Code, "非参与方不应能查看交易详情")
}
