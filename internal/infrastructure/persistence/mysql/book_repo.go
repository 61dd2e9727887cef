package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// bookRepository 图书仓储实现（MySQL）
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
// ISBN唯一性由数据库UNIQUE索引保证
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	model.ID = b.ID
	model.CreatedAt = b.CreatedAt

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书（软删除）
// 关联评分的清理由应用层DeleteBookUseCase在同一事务中显式执行
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 分页查询图书列表
// 设计说明:
// 1. 关键词搜索覆盖书名、作者、出版社（LIKE模糊匹配）
// 2. 先Count总数，再Limit/Offset取当前页
// 3. 排序字段白名单，防止SQL注入
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	db := getDB(ctx, r.db).Model(&BookModel{})

	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		db = db.Where("title LIKE ? OR author LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计图书总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		db = db.Order("price ASC")
	case "price_desc":
		db = db.Order("price DESC")
	case "rating_desc":
		db = db.Order("average_rating DESC, id ASC")
	default:
		db = db.Order("created_at DESC")
	}

	offset := (params.Page - 1) * params.PageSize
	var models []BookModel
	if err := db.Limit(params.PageSize).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, 0, len(models))
	for i := range models {
		books = append(books, toBookEntity(&models[i]))
	}

	return books, total, nil
}

// LockByID 悲观锁查询图书（SELECT ... FOR UPDATE）
// 交易创建时锁定库存行，防止并发超卖
// 必须在事务上下文中调用，否则FOR UPDATE不生效
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// UpdateStock 原子更新库存
// 设计说明:
// 1. 使用UPDATE ... SET stock = stock + ? WHERE stock + ? >= 0
//    单条SQL完成检查与更新，不依赖应用层的读-改-写
// 2. RowsAffected==0有两种可能：图书不存在或库存不足，
//    需要再查一次来区分
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	result := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 区分图书不存在和库存不足
		var count int64
		if err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, fmt.Sprintf("查询图书%d失败", id))
		}
		if count == 0 {
			return book.ErrBookNotFound
		}
		return book.ErrInsufficientStock
	}

	return nil
}

// UpdateAverageRating 写入平均评分（派生字段）
// 由评分用例在重算后调用，必须与评分变更在同一事务中提交
func (r *bookRepository) UpdateAverageRating(ctx context.Context, id uint, avg float64) error {
	// 注意：不检查RowsAffected。MySQL对值未变化的UPDATE返回0行，
	// 评分增删后平均分恰好不变时不应误报图书不存在
	err := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		Update("average_rating", avg).Error

	if err != nil {
		return apperrors.Wrap(err, "更新平均评分失败")
	}

	return nil
}

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		Price:         b.Price,
		Stock:         b.Stock,
		AverageRating: b.AverageRating,
		CoverURL:      b.CoverURL,
		Description:   b.Description,
		SellerID:      b.SellerID,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		ISBN:          model.ISBN,
		Title:         model.Title,
		Author:        model.Author,
		Publisher:     model.Publisher,
		Price:         model.Price,
		Stock:         model.Stock,
		AverageRating: model.AverageRating,
		CoverURL:      model.CoverURL,
		Description:   model.Description,
		SellerID:      model.SellerID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
