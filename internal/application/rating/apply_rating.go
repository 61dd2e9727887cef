package rating

import (
	"context"
	"errors"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/rating"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
)

// TxManager 事务管理器接口
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RateBookUseCase 图书评分用例（新增/修改/删除）
//
// 核心约束：评分写入与图书平均分重算必须在同一事务内完成，
// 保证任何时刻读到的平均分都与评分明细一致
type RateBookUseCase struct {
	ratingRepo rating.Repository
	bookRepo   book.Repository
	txManager  TxManager
}

// NewRateBookUseCase 创建评分用例
func NewRateBookUseCase(ratingRepo rating.Repository, bookRepo book.Repository, txManager TxManager) *RateBookUseCase {
	return &RateBookUseCase{
		ratingRepo: ratingRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
	}
}

// RateBookRequest 评分请求DTO
type RateBookRequest struct {
	UserID uint   // 评分人（从JWT中提取）
	BookID uint   // 图书ID
	Score  int    // 1-5
	Text   string // 可选评论
}

// RateBookResponse 评分响应DTO
type RateBookResponse struct {
	RatingID      uint    `json:"rating_id"`
	Score         int     `json:"score"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// Create 新增评分
// 同一用户对同一本书重复评分会被拒绝（数据库唯一索引兜底）
func (uc *RateBookUseCase) Create(ctx context.Context, req RateBookRequest) (*RateBookResponse, error) {
	r, err := rating.NewRating(req.UserID, req.BookID, req.Score, req.Text)
	if err != nil {
		return nil, err
	}

	var resp *RateBookResponse
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 先锁图书行：同一本书的评分变更串行执行，
		// 否则两个并发评分各自按提交前的明细算均值，后写的会覆盖掉前一条
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		existing, err := uc.ratingRepo.FindByUserAndBook(txCtx, req.UserID, req.BookID)
		if err != nil && !errors.Is(err, rating.ErrRatingNotFound) {
			return err
		}
		if existing != nil {
			return rating.ErrDuplicateRating
		}

		if err := uc.ratingRepo.Create(txCtx, r); err != nil {
			return err
		}

		avg, count, err := uc.recompute(txCtx, b)
		if err != nil {
			return err
		}
		resp = &RateBookResponse{RatingID: r.ID, Score: r.Score, AverageRating: avg, RatingCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RatingRecomputes.Inc()
	return resp, nil
}

// Revise 修改自己的评分
func (uc *RateBookUseCase) Revise(ctx context.Context, req RateBookRequest) (*RateBookResponse, error) {
	var resp *RateBookResponse
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		r, err := uc.ratingRepo.FindByUserAndBook(txCtx, req.UserID, req.BookID)
		if err != nil {
			return err
		}
		if !r.IsOwnedBy(req.UserID) {
			return rating.ErrUnauthorized
		}

		if err := r.Revise(req.Score, req.Text); err != nil {
			return err
		}
		if err := uc.ratingRepo.Update(txCtx, r); err != nil {
			return err
		}

		avg, count, err := uc.recompute(txCtx, b)
		if err != nil {
			return err
		}
		resp = &RateBookResponse{RatingID: r.ID, Score: r.Score, AverageRating: avg, RatingCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RatingRecomputes.Inc()
	return resp, nil
}

// Remove 删除自己的评分
// 删除后平均分按剩余评分重算；最后一条删除时平均分归零
func (uc *RateBookUseCase) Remove(ctx context.Context, userID, bookID uint) error {
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.LockByID(txCtx, bookID)
		if err != nil {
			return err
		}

		r, err := uc.ratingRepo.FindByUserAndBook(txCtx, userID, bookID)
		if err != nil {
			return err
		}
		if !r.IsOwnedBy(userID) {
			return rating.ErrUnauthorized
		}

		if err := uc.ratingRepo.Delete(txCtx, r.ID); err != nil {
			return err
		}

		_, _, err = uc.recompute(txCtx, b)
		return err
	})
	if err != nil {
		return err
	}
	metrics.RatingRecomputes.Inc()
	return nil
}

// recompute 重算并写回图书平均分，返回(保留两位小数后的均值, 条数)
// 调用方必须已持有该图书的行锁，b即锁定时读到的实体
func (uc *RateBookUseCase) recompute(ctx context.Context, b *book.Book) (float64, int64, error) {
	avg, count, err := uc.ratingRepo.AverageByBookID(ctx, b.ID)
	if err != nil {
		return 0, 0, err
	}
	b.SetAverageRating(avg)
	if err := uc.bookRepo.UpdateAverageRating(ctx, b.ID, b.AverageRating); err != nil {
		return 0, 0, err
	}
	return b.AverageRating, count, nil
}

// ListBookRatingsUseCase 图书评分列表用例
type ListBookRatingsUseCase struct {
	ratingRepo rating.Repository
}

// NewListBookRatingsUseCase 创建评分列表用例
func NewListBookRatingsUseCase(ratingRepo rating.Repository) *ListBookRatingsUseCase {
	return &ListBookRatingsUseCase{ratingRepo: ratingRepo}
}

// RatingItem 评分列表项DTO
type RatingItem struct {
	RatingID  uint   `json:"rating_id"`
	UserID    uint   `json:"user_id"`
	Score     int    `json:"score"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// ListBookRatingsResponse 评分列表响应DTO
type ListBookRatingsResponse struct {
	Total int64        `json:"total"`
	Items []RatingItem `json:"items"`
}

// Execute 查询图书评分列表
func (uc *ListBookRatingsUseCase) Execute(ctx context.Context, bookID uint, page, pageSize int) (*ListBookRatingsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	list, total, err := uc.ratingRepo.ListByBook(ctx, bookID, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]RatingItem, len(list))
	for i, r := range list {
		items[i] = RatingItem{
			RatingID:  r.ID,
			UserID:    r.UserID,
			Score:     r.Score,
			Text:      r.Text,
			CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return &ListBookRatingsResponse{Total: total, Items: items}, nil
}
