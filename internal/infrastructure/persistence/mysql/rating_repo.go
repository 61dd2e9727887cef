package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SaepulHayat/bookmarket/internal/domain/rating"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// ratingRepository 评分仓储实现（MySQL）
// (user_id, book_id)的复合唯一索引保证一人一书一评
type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建评分仓储
func NewRatingRepository(db *gorm.DB) rating.Repository {
	return &ratingRepository{db: db}
}

// Create 创建评分
// 重复评分由复合唯一索引兜底（应用层的查重在并发下可能漏判）
func (r *ratingRepository) Create(ctx context.Context, rt *rating.Rating) error {
	model := toRatingModel(rt)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return rating.ErrDuplicateRating
		}
		return apperrors.Wrap(err, "创建评分失败")
	}

	rt.ID = model.ID
	rt.CreatedAt = model.CreatedAt
	rt.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找评分
func (r *ratingRepository) FindByID(ctx context.Context, id uint) (*rating.Rating, error) {
	var model RatingModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rating.ErrRatingNotFound
		}
		return nil, apperrors.Wrap(err, "查询评分失败")
	}

	return toRatingEntity(&model), nil
}

// FindByUserAndBook 查找某用户对某图书的评分
func (r *ratingRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*rating.Rating, error) {
	var model RatingModel
	err := getDB(ctx, r.db).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rating.ErrRatingNotFound
		}
		return nil, apperrors.Wrap(err, "查询评分失败")
	}

	return toRatingEntity(&model), nil
}

// Update 更新评分
func (r *ratingRepository) Update(ctx context.Context, rt *rating.Rating) error {
	model := toRatingModel(rt)
	model.ID = rt.ID
	model.CreatedAt = rt.CreatedAt

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新评分失败")
	}

	rt.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除评分
func (r *ratingRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&RatingModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评分失败")
	}

	if result.RowsAffected == 0 {
		return rating.ErrRatingNotFound
	}

	return nil
}

// DeleteByBookID 删除某图书的全部评分
// 图书下架时由应用层在同一事务中调用，0条也算成功
func (r *ratingRepository) DeleteByBookID(ctx context.Context, bookID uint) error {
	err := getDB(ctx, r.db).
		Where("book_id = ?", bookID).
		Delete(&RatingModel{}).Error

	if err != nil {
		return apperrors.Wrap(err, "删除图书评分失败")
	}

	return nil
}

// ListByBook 分页查询图书的评分列表（按时间倒序）
func (r *ratingRepository) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*rating.Rating, int64, error) {
	db := getDB(ctx, r.db).Model(&RatingModel{}).Where("book_id = ?", bookID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计评分总数失败")
	}

	offset := (page - 1) * pageSize
	var models []RatingModel
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询评分列表失败")
	}

	ratings := make([]*rating.Rating, 0, len(models))
	for i := range models {
		ratings = append(ratings, toRatingEntity(&models[i]))
	}

	return ratings, total, nil
}

// AverageByBookID 计算图书的平均分与评分条数
// 设计说明:
// 1. 用单条聚合SQL让数据库算，避免拉全量评分到内存
// 2. 无评分时AVG返回NULL，用COALESCE归零
// 3. 四舍五入保留两位小数由domain层的SetAverageRating负责
func (r *ratingRepository) AverageByBookID(ctx context.Context, bookID uint) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}

	err := getDB(ctx, r.db).Model(&RatingModel{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "计算平均评分失败")
	}

	return row.Avg, row.Count, nil
}

// toRatingModel 领域实体 → GORM模型
func toRatingModel(rt *rating.Rating) *RatingModel {
	return &RatingModel{
		UserID: rt.UserID,
		BookID: rt.BookID,
		Score:  rt.Score,
		Text:   rt.Text,
	}
}

// toRatingEntity GORM模型 → 领域实体
func toRatingEntity(model *RatingModel) *rating.Rating {
	return &rating.Rating{
		ID:        model.ID,
		UserID:    model.UserID,
		BookID:    model.BookID,
		Score:     model.Score,
		Text:      model.Text,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
