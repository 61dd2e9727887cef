package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SaepulHayat/bookmarket/internal/domain/transaction"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
)

// transactionRepository 交易仓储实现（MySQL）
// 交易是财务记录：没有Delete，表结构也不带软删除字段
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓储
func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &transactionRepository{db: db}
}

// Create 创建交易
func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	model := toTransactionModel(t)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		// 交易号由时间戳+随机数生成，冲突概率极低，但唯一索引兜底
		if isDuplicateError(err) {
			return apperrors.Wrap(err, "交易号冲突")
		}
		return apperrors.Wrap(err, "创建交易失败")
	}

	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找交易
func (r *transactionRepository) FindByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	var model TransactionModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "查询交易失败")
	}

	return toTransactionEntity(&model), nil
}

// FindByCode 根据交易号查找交易
func (r *transactionRepository) FindByCode(ctx context.Context, code string) (*transaction.Transaction, error) {
	var model TransactionModel
	err := getDB(ctx, r.db).Where("code = ?", code).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "查询交易失败")
	}

	return toTransactionEntity(&model), nil
}

// LockByID 悲观锁查询交易（SELECT ... FOR UPDATE）
// 状态流转前锁行，防止买卖双方并发变更互相覆盖
func (r *transactionRepository) LockByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	var model TransactionModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transaction.ErrTransactionNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定交易失败")
	}

	return toTransactionEntity(&model), nil
}

// Update 更新交易（状态流转）
func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	model := toTransactionModel(t)
	model.ID = t.ID
	model.CreatedAt = t.CreatedAt

	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新交易失败")
	}

	t.UpdatedAt = model.UpdatedAt
	return nil
}

// ListByUser 按买家/卖家身份分页查询交易
// Role决定按customer_id还是seller_id过滤，Status可选
func (r *transactionRepository) ListByUser(ctx context.Context, params transaction.ListParams) ([]*transaction.Transaction, int64, error) {
	db := getDB(ctx, r.db).Model(&TransactionModel{})

	switch params.Role {
	case transaction.RoleSeller:
		db = db.Where("seller_id = ?", params.UserID)
	default:
		db = db.Where("customer_id = ?", params.UserID)
	}

	if params.Status != nil {
		db = db.Where("status = ?", int(*params.Status))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计交易总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	var models []TransactionModel
	err := db.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询交易列表失败")
	}

	trxs := make([]*transaction.Transaction, 0, len(models))
	for i := range models {
		trxs = append(trxs, toTransactionEntity(&models[i]))
	}

	return trxs, total, nil
}

// toTransactionModel 领域实体 → GORM模型
func toTransactionModel(t *transaction.Transaction) *TransactionModel {
	return &TransactionModel{
		Code:          t.Code,
		CustomerID:    t.CustomerID,
		SellerID:      t.SellerID,
		BookID:        t.BookID,
		Quantity:      t.Quantity,
		Amount:        t.Amount,
		Status:        int(t.Status),
		PaymentMethod: t.PaymentMethod,
		Address:       t.Shipping.Address,
		Courier:       t.Shipping.Courier,
	}
}

// toTransactionEntity GORM模型 → 领域实体
func toTransactionEntity(model *TransactionModel) *transaction.Transaction {
	return &transaction.Transaction{
		ID:            model.ID,
		Code:          model.Code,
		CustomerID:    model.CustomerID,
		SellerID:      model.SellerID,
		BookID:        model.BookID,
		Quantity:      model.Quantity,
		Amount:        model.Amount,
		Status:        transaction.Status(model.Status),
		PaymentMethod: model.PaymentMethod,
		Shipping: transaction.ShippingInfo{
			Address: model.Address,
			Courier: model.Courier,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
