package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明：领域服务封装跨实体的业务规则校验，不依赖具体的Repository实现
type Service interface {
	// PublishBook 卖家上架图书
	// 业务规则：
	// - ISBN格式必须合法（10位或13位数字）
	// - 价格必须在1-99999999之间（最小货币单位）
	// - 库存必须>=0
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, coverURL, description string, sellerID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情（含平均评分）
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// UpdateBookInfo 更新图书信息
	// 业务规则：只有上架的卖家本人可以修改
	UpdateBookInfo(ctx context.Context, id uint, userID uint, title, author, publisher, description string) error

	// UpdateBookPrice 更新图书价格
	UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error

	// Restock 卖家补货
	Restock(ctx context.Context, id uint, userID uint, quantity int) error

	// ListBooks 分页查询图书列表（公开接口，不需要权限校验）
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 上架图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, coverURL, description string, sellerID uint) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if price < 1 || price > 99999999 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// ISBN唯一性预检（数据库唯一索引兜底）
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	b := NewBook(isbn, title, author, publisher, price, stock, coverURL, description, sellerID)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateBookInfo 更新图书信息
func (s *service) UpdateBookInfo(ctx context.Context, id uint, userID uint, title, author, publisher, description string) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	b.UpdateInfo(title, author, publisher, description)
	return s.repo.Update(ctx, b)
}

// UpdateBookPrice 更新图书价格
// 已创建交易的金额是创建时的价格快照，改价不影响历史交易
func (s *service) UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error {
	if newPrice < 1 || newPrice > 99999999 {
		return ErrInvalidPrice
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	if err := b.UpdatePrice(newPrice); err != nil {
		return err
	}

	return s.repo.Update(ctx, b)
}

// Restock 卖家补货
func (s *service) Restock(ctx context.Context, id uint, userID uint, quantity int) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}

	if err := b.IncrStock(quantity); err != nil {
		return err
	}

	return s.repo.Update(ctx, b)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10和ISBN-13，允许分隔符（978-7-115-42802-8）
// 简化实现：只检查位数和是否全为数字
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	length := len(cleanISBN)
	return length == 10 || length == 13
}
