//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 使用方式：
//  1. 修改依赖关系后运行 `wire gen ./cmd/api`
//  2. Wire生成wire_gen.go，包含完整的依赖创建代码
//  3. main.go可改为调用InitializeApp()
//
// 说明：Wire在编译期生成代码，零运行时开销、类型安全、
// 编译期即可发现循环依赖
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/SaepulHayat/bookmarket/internal/application/book"
	apprating "github.com/SaepulHayat/bookmarket/internal/application/rating"
	apptrx "github.com/SaepulHayat/bookmarket/internal/application/transaction"
	appuser "github.com/SaepulHayat/bookmarket/internal/application/user"
	appvoucher "github.com/SaepulHayat/bookmarket/internal/application/voucher"
	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/user"
	"github.com/SaepulHayat/bookmarket/internal/infrastructure/config"
	"github.com/SaepulHayat/bookmarket/internal/infrastructure/persistence/mysql"
	"github.com/SaepulHayat/bookmarket/internal/infrastructure/persistence/redis"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/handler"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/middleware"
	"github.com/SaepulHayat/bookmarket/pkg/jwt"
	"github.com/SaepulHayat/bookmarket/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
// wire.Bind把*mysql.TxManager绑定到各层声明的事务接口上
// （每个消费方自己声明小接口，便于单元测试用假实现替换）
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewTransactionRepository,
	mysql.NewRatingRepository,
	mysql.NewVoucherRepository,
	mysql.NewTxManager,
	wire.Bind(new(user.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appbook.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apptrx.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apprating.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appvoucher.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewGetProfileUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	apptrx.NewCreateTransactionUseCase,
	apptrx.NewUpdateStatusUseCase,
	apptrx.NewListTransactionsUseCase,
	apptrx.NewGetTransactionUseCase,
	apprating.NewRateBookUseCase,
	apprating.NewListBookRatingsUseCase,
	appvoucher.NewRedeemVoucherUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	provideUserHandler,
	handler.NewBookHandler,
	handler.NewTransactionHandler,
	handler.NewRatingHandler,
	handler.NewVoucherHandler,
)

// provideJWTManager 从配置创建JWT管理器
// config.Config包含多个字段，Wire无法自动提取JWT子配置
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideUserHandler 用户处理器需要Access Token有效期（登出黑名单TTL）
func provideUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	getProfileUseCase *appuser.GetProfileUseCase,
	cfg *config.Config,
) *handler.UserHandler {
	return handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase,
		getProfileUseCase, cfg.JWT.AccessTokenExpire)
}

// provideEventPublisher 创建交易事件发布器
// MQ未启用时返回nil接口，用例侧跳过事件发布
func provideEventPublisher(cfg *config.Config) (apptrx.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	trxHandler *handler.TransactionHandler,
	ratingHandler *handler.RatingHandler,
	voucherHandler *handler.VoucherHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, trxHandler, ratingHandler, voucherHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
// Wire会分析依赖链并在wire_gen.go中生成按序调用所有构造函数的代码，
// 这里的返回值只是占位符
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideEventPublisher,
		provideGinEngine,
	)

	return nil, nil
}
