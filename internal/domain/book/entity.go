package book

import (
	"math"
	"time"
)

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. Book是图书聚合的根实体，包含图书的核心属性
// 2. 价格使用int64存储最小货币单位（避免浮点数精度问题）
// 3. ISBN作为业务唯一标识（数据库层保证唯一性）
// 4. SellerID关联上架图书的卖家（交易创建时作为收款方）
// 5. AverageRating是派生字段：恒等于该书当前全部评分的算术平均值
//    （无评分时为0），四舍五入保留2位小数，只能由评分聚合器写入
type Book struct {
	ID            uint
	ISBN          string  // ISBN号（国际标准书号）
	Title         string  // 书名
	Author        string  // 作者
	Publisher     string  // 出版社
	Price         int64   // 单价（最小货币单位）
	Stock         int     // 库存数量
	AverageRating float64 // 平均评分（派生字段，2位小数）
	CoverURL      string  // 封面图片URL
	Description   string  // 图书描述
	SellerID      uint    // 卖家用户ID（关联User表）
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书（工厂方法）
func NewBook(isbn, title, author, publisher string, price int64, stock int, coverURL, description string, sellerID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		Stock:       stock,
		CoverURL:    coverURL,
		Description: description,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdatePrice 更新价格（领域行为）
// 业务规则：价格必须>0
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存（交易创建时锁定后调用）
// 业务规则：
// 1. 数量必须>0
// 2. 库存不足时返回ErrInsufficientStock，且不发生任何变更
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存（卖家补货）
// 注意：交易取消不走此路径——取消已支付交易不回补库存、不退款，
// 退款需要单独的人工流程
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// SetAverageRating 写入平均评分（仅供评分聚合器调用）
// 四舍五入保留2位小数（half-up）
func (b *Book) SetAverageRating(avg float64) {
	b.AverageRating = math.Round(avg*100) / 100
	b.UpdatedAt = time.Now()
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// IsOwnedBy 检查图书是否由指定卖家上架
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.SellerID == userID
}
