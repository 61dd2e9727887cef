package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/SaepulHayat/bookmarket/docs" // swagger文档注册
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
	"github.com/SaepulHayat/bookmarket/pkg/response"
	"github.com/SaepulHayat/bookmarket/pkg/tracing"
)

// main 主程序入口
// 依赖注入链：Repository ← Service ← UseCase ← Handler
// （wire.go提供等价的Wire生成版本，手动组装便于阅读依赖关系）
//
// @title           BookMarket API
// @version         1.0
// @description     二手书交易市场API：钱包、图书、交易、评分、推荐奖励、代金券
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	log.Printf("配置加载成功 port=%d mode=%s db=%s:%d/%s redis=%s",
		cfg.Server.Port, cfg.Server.Mode,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName,
		cfg.Redis.Addr())

	// 2. 初始化链路追踪（可选）
	var tracerShutdown func(context.Context) error
	if cfg.Tracing.Enabled {
		tracerShutdown, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
	}

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息队列（可选）
	// MQ不可用时交易事件只写日志，不影响核心交易流程
	var publisher apptrx.EventPublisher
	var mqPublisher *mq.Publisher
	if cfg.MQ.Enabled {
		mqPublisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化MQ失败: %v", err)
		}
		publisher = mqPublisher
	}

	// 6. 依赖注入（手动组装）

	// 基础设施层
	txManager := mysql.NewTxManager(db)
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	trxRepo := mysql.NewTransactionRepository(db)
	ratingRepo := mysql.NewRatingRepository(db)
	voucherRepo := mysql.NewVoucherRepository(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo, txManager)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	getProfileUseCase := appuser.NewGetProfileUseCase(userRepo)

	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookRepo, ratingRepo, txManager)

	createTrxUseCase := apptrx.NewCreateTransactionUseCase(trxRepo, bookRepo, userRepo, txManager, publisher)
	updateStatusUseCase := apptrx.NewUpdateStatusUseCase(trxRepo, txManager, publisher)
	listTrxUseCase := apptrx.NewListTransactionsUseCase(trxRepo)
	getTrxUseCase := apptrx.NewGetTransactionUseCase(trxRepo)

	rateBookUseCase := apprating.NewRateBookUseCase(ratingRepo, bookRepo, txManager)
	listRatingsUseCase := apprating.NewListBookRatingsUseCase(ratingRepo)

	redeemVoucherUseCase := appvoucher.NewRedeemVoucherUseCase(voucherRepo, userRepo, txManager)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase,
		getProfileUseCase, cfg.JWT.AccessTokenExpire)
	bookHandler := handler.NewBookHandler(publishBookUseCase, getBookUseCase,
		listBooksUseCase, updateBookUseCase, deleteBookUseCase)
	trxHandler := handler.NewTransactionHandler(createTrxUseCase, updateStatusUseCase,
		listTrxUseCase, getTrxUseCase)
	ratingHandler := handler.NewRatingHandler(rateBookUseCase, listRatingsUseCase)
	voucherHandler := handler.NewVoucherHandler(redeemVoucherUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, trxHandler, ratingHandler, voucherHandler, authMiddleware)

	// 8. 启动服务（支持优雅退出）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("服务启动成功 http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	if mqPublisher != nil {
		if err := mqPublisher.Close(); err != nil {
			log.Printf("关闭MQ连接失败: %v", err)
		}
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("关闭链路追踪失败: %v", err)
		}
	}

	log.Println("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	trxHandler *handler.TransactionHandler,
	ratingHandler *handler.RatingHandler,
	voucherHandler *handler.VoucherHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（访问 /swagger/index.html）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
			users.GET("/profile", authMiddleware.RequireAuth(), userHandler.GetProfile)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.List)
			books.GET("/:id", bookHandler.Get)
			books.GET("/:id/ratings", ratingHandler.List)

			// 需要登录
			auth := books.Group("", authMiddleware.RequireAuth())
			{
				auth.POST("", bookHandler.Publish)
				auth.PUT("/:id", bookHandler.UpdateInfo)
				auth.PUT("/:id/price", bookHandler.UpdatePrice)
				auth.PUT("/:id/stock", bookHandler.Restock)
				auth.DELETE("/:id", bookHandler.Delete)

				// 评分
				auth.POST("/:id/ratings", ratingHandler.Create)
				auth.PUT("/:id/ratings", ratingHandler.Revise)
				auth.DELETE("/:id/ratings", ratingHandler.Remove)
			}
		}

		// 交易模块（全部需要登录）
		transactions := v1.Group("/transactions")
		transactions.Use(authMiddleware.RequireAuth())
		{
			transactions.POST("", trxHandler.Create)
			transactions.GET("", trxHandler.List)
			transactions.GET("/:id", trxHandler.Get)
			transactions.PUT("/:id/status", trxHandler.UpdateStatus)
		}

		// 代金券模块（需要登录）
		vouchers := v1.Group("/vouchers")
		vouchers.Use(authMiddleware.RequireAuth())
		{
			vouchers.POST("/redeem", voucherHandler.Redeem)
		}
	}
}
