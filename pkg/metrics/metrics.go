// Package metrics 提供基于Prometheus的业务指标收集
//
// 指标类型选择：
// - Counter（只增不减）：交易数、错误数、兑换数
// - Gauge（瞬时值）：处理中的请求数、熔断器状态
// - Histogram（分布）：请求耗时、交易金额
//
// 所有指标在包加载时通过promauto注册到默认Registry，
// /metrics端点由promhttp.Handler()暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP请求指标
var (
	// HTTPRequestsTotal HTTP请求总数
	// 标签：method（GET/POST）、path、status（200/500）
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)
)

// 交易业务指标
var (
	// TransactionsCreated 交易创建总数
	// 标签：payment_method（balance/transfer/cod）
	TransactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_created_total",
			Help: "交易创建总数",
		},
		[]string{"payment_method"},
	)

	// TransactionsFailed 交易创建失败总数（库存不足、余额不足等）
	TransactionsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_failed_total",
			Help: "交易创建失败总数",
		},
	)

	// TransactionAmount 交易金额分布（元）
	TransactionAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transaction_amount_yuan",
			Help:    "交易金额分布（元）",
			Buckets: []float64{10, 50, 100, 300, 500, 1000, 5000},
		},
	)

	// TransactionStatusChanges 交易状态流转总数
	// 标签：from、to（状态英文名，有限枚举，不会造成高基数）
	TransactionStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_status_changes_total",
			Help: "交易状态流转总数",
		},
		[]string{"from", "to"},
	)
)

// 营销与评分指标
var (
	// ReferralBonuses 推荐奖励发放次数
	ReferralBonuses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_bonuses_total",
			Help: "推荐奖励发放次数",
		},
	)

	// VouchersRedeemed 代金券兑换次数
	VouchersRedeemed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vouchers_redeemed_total",
			Help: "代金券兑换次数",
		},
	)

	// RatingRecomputes 图书平均分重算次数
	RatingRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_recomputes_total",
			Help: "图书平均分重算次数",
		},
	)
)

// 基础设施指标
var (
	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// MessagesPublished 消息发布总数
	// 标签：routing_key（transaction.created等）、result
	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
)
