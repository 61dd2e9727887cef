package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaepulHayat/bookmarket/internal/domain/voucher"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// voucherRepository 代金券仓储实现（MySQL）
type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository 创建代金券仓储
func NewVoucherRepository(db *gorm.DB) voucher.Repository {
	return &voucherRepository{db: db}
}

// Create 创建代金券
func (r *voucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	model := toVoucherModel(v)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.Wrap(err, "券码已存在")
		}
		return apperrors.Wrap(err, "创建代金券失败")
	}

	v.ID = model.ID
	v.CreatedAt = model.CreatedAt
	v.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByCode 根据券码查找代金券
func (r *voucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	var model VoucherModel
	err := getDB(ctx, r.db).Where("code = ?", code).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voucher.ErrVoucherNotFound
		}
		return nil, apperrors.Wrap(err, "查询代金券失败")
	}

	return toVoucherEntity(&model), nil
}

// LockByCode 悲观锁查询代金券（SELECT ... FOR UPDATE）
// 兑换前锁行，保证usage_count的读-改-写不会并发超限
// 必须在事务上下文中调用
func (r *voucherRepository) LockByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	var model VoucherModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, voucher.ErrVoucherNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定代金券失败")
	}

	return toVoucherEntity(&model), nil
}

// Update 更新代金券
func (r *voucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	model := toVoucherModel(v)
	model.ID = v.ID
	model.CreatedAt = v.CreatedAt

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新代金券失败")
	}

	v.UpdatedAt = model.UpdatedAt
	return nil
}

// toVoucherModel 领域实体 → GORM模型
func toVoucherModel(v *voucher.Voucher) *VoucherModel {
	return &VoucherModel{
		Code:       v.Code,
		Amount:     v.Amount,
		UsageLimit: v.UsageLimit,
		UsageCount: v.UsageCount,
		IsActive:   v.IsActive,
	}
}

// toVoucherEntity GORM模型 → 领域实体
func toVoucherEntity(model *VoucherModel) *voucher.Voucher {
	return &voucher.Voucher{
		ID:         model.ID,
		Code:       model.Code,
		Amount:     model.Amount,
		UsageLimit: model.UsageLimit,
		UsageCount: model.UsageCount,
		IsActive:   model.IsActive,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
