package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SaepulHayat/bookmarket/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（生产环境应使用版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&TransactionModel{},
		&RatingModel{},
		&VoucherModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Balance以"分"为单位存储，避免浮点数精度问题
type UserModel struct {
	ID            uint           `gorm:"primaryKey"`
	Email         string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password      string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname      string         `gorm:"size:50;not null;comment:昵称"`
	Balance       int64          `gorm:"not null;default:0;comment:钱包余额(分)"`
	ReferralCode  string         `gorm:"uniqueIndex;size:16;not null;comment:本人推荐码"`
	ReferredBy    *uint          `gorm:"index;comment:推荐人用户ID"`
	TotalReferred int            `gorm:"not null;default:0;comment:已成功推荐人数"`
	CreatedAt     time.Time      `gorm:"comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位
// 2. ISBN有唯一索引，防止重复上架
// 3. SellerID关联用户表，支持查询某卖家的所有图书
// 4. AverageRating由评分用例在事务内重算写回
type BookModel struct {
	ID            uint           `gorm:"primaryKey"`
	ISBN          string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title         string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher     string         `gorm:"size:100;comment:出版社"`
	Price         int64          `gorm:"index:idx_list;not null;comment:价格(分)"`
	Stock         int            `gorm:"not null;default:0;comment:库存数量"`
	AverageRating float64        `gorm:"not null;default:0;comment:平均评分(保留两位小数)"`
	CoverURL      string         `gorm:"size:500;comment:封面图片URL"`
	Description   string         `gorm:"type:text;comment:图书描述"`
	SellerID      uint           `gorm:"index;not null;comment:卖家用户ID"`
	CreatedAt     time.Time      `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// TransactionModel GORM交易模型
// 设计说明:
// 1. Code有唯一索引（业务主键，对外展示）
// 2. Status使用tinyint存储（节省空间，便于索引）
// 3. 交易是财务记录，不做软删除
// 4. Amount是下单时的价格快照 × 数量
type TransactionModel struct {
	ID            uint      `gorm:"primaryKey"`
	Code          string    `gorm:"uniqueIndex;size:32;not null;comment:交易号"`
	CustomerID    uint      `gorm:"index;not null;comment:买家用户ID"`
	SellerID      uint      `gorm:"index;not null;comment:卖家用户ID"`
	BookID        uint      `gorm:"index;not null;comment:图书ID"`
	Quantity      int       `gorm:"not null;comment:购买数量"`
	Amount        int64     `gorm:"not null;comment:交易金额(分)"`
	Status        int       `gorm:"index;type:tinyint;default:1;comment:交易状态(1待支付2已支付3处理中4已发货5已送达6已取消7已退款)"`
	PaymentMethod string    `gorm:"size:16;not null;comment:支付方式"`
	Address       string    `gorm:"size:255;comment:收货地址"`
	Courier       string    `gorm:"size:50;comment:快递公司"`
	CreatedAt     time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (TransactionModel) TableName() string {
	return "transactions"
}

// RatingModel GORM评分模型
// (user_id, book_id)复合唯一索引保证一人一书一评
type RatingModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_book;not null;comment:评分人用户ID"`
	BookID    uint      `gorm:"uniqueIndex:idx_user_book;index;not null;comment:图书ID"`
	Score     int       `gorm:"type:tinyint;not null;comment:分值(1-5)"`
	Text      string    `gorm:"type:text;comment:评论内容"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (RatingModel) TableName() string {
	return "ratings"
}

// VoucherModel GORM代金券模型
type VoucherModel struct {
	ID         uint      `gorm:"primaryKey"`
	Code       string    `gorm:"uniqueIndex;size:32;not null;comment:券码"`
	Amount     int64     `gorm:"not null;comment:面额(分)"`
	UsageLimit int       `gorm:"not null;comment:使用上限"`
	UsageCount int       `gorm:"not null;default:0;comment:已使用次数"`
	IsActive   bool      `gorm:"not null;default:true;comment:是否可用"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (VoucherModel) TableName() string {
	return "vouchers"
}
