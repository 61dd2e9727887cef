package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 黑盒测试：通过HTTP调用运行中的服务，走完整的
// Handler → UseCase → Service → Repository → MySQL/Redis链路
//
// 运行方式（需要先启动服务与依赖环境）：
//   BOOKMARKET_INTEGRATION=1 go test -v ./test/integration/...

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireIntegrationEnv 未开启集成测试环境时跳过
func RequireIntegrationEnv(t *testing.T) {
	t.Helper()
	if os.Getenv("BOOKMARKET_INTEGRATION") == "" {
		t.Skip("需要运行中的服务，设置BOOKMARKET_INTEGRATION=1启用")
	}
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	Balance      int64  `json:"balance"`
	ReferralCode string `json:"referral_code"`
}

// LoginData 登录响应数据
type LoginData struct {
	UserID       uint   `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProfileData 个人信息响应数据
type ProfileData struct {
	UserID        uint   `json:"user_id"`
	Balance       int64  `json:"balance"`
	ReferralCode  string `json:"referral_code"`
	TotalReferred int    `json:"total_referred"`
}

// BookData 图书响应数据
type BookData struct {
	BookID        uint    `json:"book_id"`
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Price         int64   `json:"price"`
	Stock         int     `json:"stock"`
	AverageRating float64 `json:"average_rating"`
	SellerID      uint    `json:"seller_id"`
}

// TransactionData 交易响应数据
type TransactionData struct {
	TransactionID uint   `json:"transaction_id"`
	Code          string `json:"code"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

// StatusChangeData 状态流转响应数据
type StatusChangeData struct {
	TransactionID uint   `json:"transaction_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// RatingData 评分响应数据
type RatingData struct {
	RatingID      uint    `json:"rating_id"`
	Score         int     `json:"score"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// doJSON 发送HTTP请求并解析统一响应结构
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(respBody, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(respBody))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PUT", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用纳秒时间戳避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN（978前缀+10位数字）
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// RegisterTestUser 注册测试用户并登录，返回注册数据与Token
// referralCode非空时携带推荐码注册
func RegisterTestUser(t *testing.T, nickname, referralCode string) (RegisterData, string) {
	t.Helper()

	email := GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}
	if referralCode != "" {
		registerReq["referral_code"] = referralCode
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	var registerData RegisterData
	err := json.Unmarshal(registerResp.Data, &registerData)
	require.NoError(t, err, "解析注册响应失败")

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}
	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err = json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return registerData, loginData.AccessToken
}

// PublishTestBook 上架测试图书并返回图书ID
func PublishTestBook(t *testing.T, token string, title string, price int64, stock int) uint {
	t.Helper()

	bookReq := map[string]interface{}{
		"isbn":        GenerateTestISBN(),
		"title":       title,
		"author":      "测试作者",
		"publisher":   "测试出版社",
		"price":       price,
		"stock":       stock,
		"description": "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, token)
	require.Equal(t, 0, bookResp.Code, "图书上架失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return bookData.BookID
}

// GetProfile 查询个人信息
func GetProfile(t *testing.T, token string) ProfileData {
	t.Helper()

	resp := GetJSON(t, BaseURL+"/users/profile", token)
	require.Equal(t, 0, resp.Code, "查询个人信息失败: %s", resp.Message)

	var profile ProfileData
	err := json.Unmarshal(resp.Data, &profile)
	require.NoError(t, err, "解析个人信息失败")

	return profile
}
