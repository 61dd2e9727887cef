package transaction

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateCode 生成交易号
// 交易号设计原则：
// 1. 全局唯一（数据库唯一索引兜底）
// 2. 时间有序（便于分库分表）
// 3. 不可预测（防止恶意遍历）
//
// 格式：TRX + 时间戳(秒) + 6位随机数
// 示例：TRX1699248000123456
func GenerateCode() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000)
	return fmt.Sprintf("TRX%d%06d", timestamp, random)
}
