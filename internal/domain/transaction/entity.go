package transaction

import (
	"time"
)

// Status 交易状态
// 设计说明：
// 1. 使用int类型而非string（节省存储空间，便于索引）
// 2. 合法流转集中在一张转换表里校验，杜绝散落在各调用点的字符串比较
// 3. Refunded是保留的终态：枚举中存在，但没有任何转换规则能到达它
type Status int

const (
	StatusPending    Status = 1 // 待支付
	StatusPaid       Status = 2 // 已支付
	StatusProcessing Status = 3 // 备货中
	StatusShipped    Status = 4 // 已发货
	StatusDelivered  Status = 5 // 已送达（终态）
	StatusCancelled  Status = 6 // 已取消（终态）
	StatusRefunded   Status = 7 // 已退款（保留终态，暂无流转路径）
)

// String 实现Stringer接口（对外API与日志统一使用小写英文状态名）
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPaid:
		return "paid"
	case StatusProcessing:
		return "processing"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	case StatusRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRefunded
}

// ParseStatus 解析状态字符串
// "received"是"delivered"的同义词：买家确认收货走的就是送达流转
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "paid":
		return StatusPaid, nil
	case "processing":
		return StatusProcessing, nil
	case "shipped":
		return StatusShipped, nil
	case "delivered", "received":
		return StatusDelivered, nil
	case "cancelled":
		return StatusCancelled, nil
	case "refunded":
		return StatusRefunded, nil
	default:
		return 0, ErrInvalidStatus
	}
}

// Role 状态变更的操作者角色（相对于交易本身）
type Role string

const (
	RoleCustomer Role = "customer" // 买家
	RoleSeller   Role = "seller"   // 卖家
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleSeller:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// PaymentMethod 支付方式
const (
	PaymentBalance  = "balance"  // 钱包余额（创建时同步完成扣款/入账/扣库存）
	PaymentTransfer = "transfer" // 银行转账（外部确认，创建后停留在pending）
	PaymentCOD      = "cod"      // 货到付款（同上）
)

// IsValidPaymentMethod 校验支付方式
func IsValidPaymentMethod(m string) bool {
	return m == PaymentBalance || m == PaymentTransfer || m == PaymentCOD
}

// ShippingInfo 收货信息（可选）
type ShippingInfo struct {
	Address string // 收货地址
	Courier string // 承运方
}

// Transaction 交易实体（聚合根）
// 设计说明：
// 1. Amount = 创建时单价 × 数量（历史价格快照，之后不可变，防止改价影响历史交易）
// 2. 创建后只允许状态流转，永不删除（财务记录）
// 3. Code使用可读编码（时间有序+随机尾缀，防遍历）
type Transaction struct {
	ID            uint
	Code          string // 交易号（业务主键，全局唯一）
	CustomerID    uint   // 买家用户ID
	SellerID      uint   // 卖家用户ID
	BookID        uint   // 图书ID
	Quantity      int    // 购买数量
	Amount        int64  // 交易金额（最小货币单位），创建后不可变
	Status        Status // 交易状态
	PaymentMethod string // 支付方式
	Shipping      ShippingInfo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTransaction 创建新交易（工厂方法）
// 初始状态为Pending；余额支付的pending→paid由编排方在同一事务内完成
func NewTransaction(code string, customerID, sellerID, bookID uint, quantity int, amount int64, paymentMethod string, shipping ShippingInfo) (*Transaction, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !IsValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	now := time.Now()
	return &Transaction{
		Code:          code,
		CustomerID:    customerID,
		SellerID:      sellerID,
		BookID:        bookID,
		Quantity:      quantity,
		Amount:        amount,
		Status:        StatusPending,
		PaymentMethod: paymentMethod,
		Shipping:      shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// transitions 状态转换表（from-status → 允许的目标状态）
// 这是唯一的合法性来源；Refunded没有入边（保留状态）
var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// roleTargets 角色可发起的目标状态（role × to-status → 是否允许）
// 卖家：备货/发货/送达；买家：取消 + 确认收货（received同义词映射到Delivered）
var roleTargets = map[Role]map[Status]bool{
	RoleSeller: {
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
	},
	RoleCustomer: {
		StatusCancelled: true,
		StatusDelivered: true,
	},
}

// CanTransitionTo 检查状态机是否允许转换到目标状态（不含角色校验）
func (t *Transaction) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[t.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 角色受限的状态转换
// 校验顺序（全部在变更前完成，失败时无任何副作用）：
// 1. 归属校验：买家必须是交易的买家，卖家必须是交易的卖家
// 2. 角色校验：该角色是否被允许发起到目标状态的变更
// 3. 状态机校验：当前状态是否允许转换到目标状态
func (t *Transaction) TransitionTo(target Status, actorID uint, role Role) error {
	switch role {
	case RoleCustomer:
		if t.CustomerID != actorID {
			return ErrUnauthorizedTransition
		}
	case RoleSeller:
		if t.SellerID != actorID {
			return ErrUnauthorizedTransition
		}
	default:
		return ErrUnauthorizedTransition
	}

	if !roleTargets[role][target] {
		return ErrUnauthorizedTransition
	}

	if !t.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}

	t.Status = target
	t.UpdatedAt = time.Now()
	return nil
}

// MarkPaid 余额支付成功（仅供交易创建编排在事务内调用）
// pending→paid不经过角色校验：它不是操作者发起的流转，而是支付结果
func (t *Transaction) MarkPaid() error {
	if !t.CanTransitionTo(StatusPaid) {
		return ErrInvalidStatusTransition
	}
	t.Status = StatusPaid
	t.UpdatedAt = time.Now()
	return nil
}

// IsCustomer 检查用户是否为交易买家
func (t *Transaction) IsCustomer(userID uint) bool {
	return t.CustomerID == userID
}

// IsSeller 检查用户是否为交易卖家
func (t *Transaction) IsSeller(userID uint) bool {
	return t.SellerID == userID
}
