package book

import (
	"context"
	"fmt"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/rating"
)

// TxManager 事务管理器接口
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PublishBookUseCase 图书上架用例
type PublishBookUseCase struct {
	bookService book.Service
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(bookService book.Service) *PublishBookUseCase {
	return &PublishBookUseCase{bookService: bookService}
}

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	SellerID    uint   // 卖家ID（从JWT中提取）
	ISBN        string `json:"isbn" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Publisher   string `json:"publisher"`
	Price       int64  `json:"price" binding:"required,min=1"` // 单位：分
	Stock       int    `json:"stock" binding:"required,min=0"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
}

// BookDetail 图书详情DTO
type BookDetail struct {
	BookID        uint    `json:"book_id"`
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Publisher     string  `json:"publisher"`
	Price         int64   `json:"price"`
	PriceYuan     string  `json:"price_yuan"`
	Stock         int     `json:"stock"`
	AverageRating float64 `json:"average_rating"`
	CoverURL      string  `json:"cover_url"`
	Description   string  `json:"description"`
	SellerID      uint    `json:"seller_id"`
	CreatedAt     string  `json:"created_at"`
}

// Execute 执行上架
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*BookDetail, error) {
	b, err := uc.bookService.PublishBook(ctx, req.ISBN, req.Title, req.Author, req.Publisher,
		req.Price, req.Stock, req.CoverURL, req.Description, req.SellerID)
	if err != nil {
		return nil, err
	}
	return toBookDetail(b), nil
}

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建图书详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookDetail(b), nil
}

// ListBooksUseCase 图书列表用例
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建图书列表用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksRequest 列表请求DTO
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string // 按书名/作者模糊匹配
	SortBy   string // price/rating/created_at
}

// ListBooksResponse 列表响应DTO
type ListBooksResponse struct {
	Total int64        `json:"total"`
	Items []BookDetail `json:"items"`
}

// Execute 查询图书列表
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}
	list, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}
	items := make([]BookDetail, len(list))
	for i, b := range list {
		items[i] = *toBookDetail(b)
	}
	return &ListBooksResponse{Total: total, Items: items}, nil
}

// UpdateBookUseCase 图书维护用例（改信息、改价、补货）
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建图书维护用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateInfo 修改图书信息（仅限卖家本人）
func (uc *UpdateBookUseCase) UpdateInfo(ctx context.Context, id, userID uint, title, author, publisher, description string) error {
	return uc.bookService.UpdateBookInfo(ctx, id, userID, title, author, publisher, description)
}

// UpdatePrice 修改价格（仅限卖家本人）
func (uc *UpdateBookUseCase) UpdatePrice(ctx context.Context, id, userID uint, price int64) error {
	return uc.bookService.UpdateBookPrice(ctx, id, userID, price)
}

// Restock 补货（仅限卖家本人）
func (uc *UpdateBookUseCase) Restock(ctx context.Context, id, userID uint, quantity int) error {
	return uc.bookService.Restock(ctx, id, userID, quantity)
}

// DeleteBookUseCase 图书下架用例
//
// 下架时级联删除该书的全部评分，两者在同一事务内提交
type DeleteBookUseCase struct {
	bookRepo   book.Repository
	ratingRepo rating.Repository
	txManager  TxManager
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(bookRepo book.Repository, ratingRepo rating.Repository, txManager TxManager) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookRepo:   bookRepo,
		ratingRepo: ratingRepo,
		txManager:  txManager,
	}
}

// Execute 执行下架（仅限卖家本人）
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id, userID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !b.IsOwnedBy(userID) {
			return book.ErrUnauthorized
		}

		if err := uc.ratingRepo.DeleteByBookID(txCtx, id); err != nil {
			return err
		}
		return uc.bookRepo.Delete(txCtx, id)
	})
}

func toBookDetail(b *book.Book) *BookDetail {
	return &BookDetail{
		BookID:        b.ID,
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Price:         b.Price,
		PriceYuan:     fmt.Sprintf("%.2f", float64(b.Price)/100.0),
		Stock:         b.Stock,
		AverageRating: b.AverageRating,
		CoverURL:      b.CoverURL,
		Description:   b.Description,
		SellerID:      b.SellerID,
		CreatedAt:     b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
