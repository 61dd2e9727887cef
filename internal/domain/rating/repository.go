package rating

import (
	"context"
)

// Repository 评分仓储接口
type Repository interface {
	Create(ctx context.Context, r *Rating) error
	FindByID(ctx context.Context, id uint) (*Rating, error)
	FindByUserAndBook(ctx context.Context, userID, bookID uint) (*Rating, error)
	Update(ctx context.Context, r *Rating) error
	Delete(ctx context.Context, id uint) error
	DeleteByBookID(ctx context.Context, bookID uint) error
	ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*Rating, int64, error)
	// AverageByBookID 计算图书的平均分与评分条数，无评分返回(0, 0, nil)
	AverageByBookID(ctx context.Context, bookID uint) (float64, int64, error)
}
