package transaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/transaction"
	"github.com/SaepulHayat/bookmarket/internal/domain/user"
)

// ---- 内存版仓储与事务管理器 ----
//
// 事务语义用快照模拟：fn返回错误时恢复所有仓储的修改前状态，
// 与数据库ROLLBACK的可见效果一致

type fakeStore struct {
	users map[uint]*user.User
	books map[uint]*book.Book
	trxs  map[uint]*transaction.Transaction
	nexID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[uint]*user.User),
		books: make(map[uint]*book.Book),
		trxs:  make(map[uint]*transaction.Transaction),
		nexID: 1,
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	cp.nexID = s.nexID
	for id, u := range s.users {
		c := *u
		cp.users[id] = &c
	}
	for id, b := range s.books {
		c := *b
		cp.books[id] = &c
	}
	for id, t := range s.trxs {
		c := *t
		cp.trxs[id] = &c
	}
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.users = snap.users
	s.books = snap.books
	s.trxs = snap.trxs
	s.nexID = snap.nexID
}

type fakeTxManager struct{ store *fakeStore }

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct {
	store *fakeStore
	// 记录LockByID的调用顺序，用于校验加锁次序
	lockOrder []uint
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	u.ID = r.store.nexID
	r.store.nexID++
	r.store.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) FindByReferralCode(ctx context.Context, code string) (*user.User, error) {
	for _, u := range r.store.users {
		if u.ReferralCode == code {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) LockByID(ctx context.Context, id uint) (*user.User, error) {
	r.lockOrder = append(r.lockOrder, id)
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	if _, ok := r.store.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	c := *u
	r.store.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.store.users, id)
	return nil
}

type fakeBookRepo struct{ store *fakeStore }

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	b.ID = r.store.nexID
	r.store.nexID++
	r.store.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, ok := r.store.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	c := *b
	return &c, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	for _, b := range r.store.books {
		if b.ISBN == isbn {
			c := *b
			return &c, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	c := *b
	r.store.books[b.ID] = &c
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	delete(r.store.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var out []*book.Book
	for _, b := range r.store.books {
		c := *b
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	b, ok := r.store.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

func (r *fakeBookRepo) UpdateAverageRating(ctx context.Context, id uint, avg float64) error {
	b, ok := r.store.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	b.AverageRating = avg
	return nil
}

type fakeTxRepo struct{ store *fakeStore }

func (r *fakeTxRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	t.ID = r.store.nexID
	r.store.nexID++
	c := *t
	r.store.trxs[t.ID] = &c
	return nil
}

func (r *fakeTxRepo) FindByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	t, ok := r.store.trxs[id]
	if !ok {
		return nil, transaction.ErrTransactionNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeTxRepo) FindByCode(ctx context.Context, code string) (*transaction.Transaction, error) {
	for _, t := range r.store.trxs {
		if t.Code == code {
			c := *t
			return &c, nil
		}
	}
	return nil, transaction.ErrTransactionNotFound
}

func (r *fakeTxRepo) LockByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTxRepo) Update(ctx context.Context, t *transaction.Transaction) error {
	if _, ok := r.store.trxs[t.ID]; !ok {
		return transaction.ErrTransactionNotFound
	}
	c := *t
	r.store.trxs[t.ID] = &c
	return nil
}

func (r *fakeTxRepo) ListByUser(ctx context.Context, params transaction.ListParams) ([]*transaction.Transaction, int64, error) {
	var out []*transaction.Transaction
	for _, t := range r.store.trxs {
		if params.Role == transaction.RoleCustomer && t.CustomerID != params.UserID {
			continue
		}
		if params.Role == transaction.RoleSeller && t.SellerID != params.UserID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

// ---- 测试环境 ----

type testEnv struct {
	store    *fakeStore
	userRepo *fakeUserRepo
	bookRepo *fakeBookRepo
	txRepo   *fakeTxRepo
	create   *CreateTransactionUseCase
	update   *UpdateStatusUseCase
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	userRepo := &fakeUserRepo{store: store}
	bookRepo := &fakeBookRepo{store: store}
	txRepo := &fakeTxRepo{store: store}
	tm := &fakeTxManager{store: store}
	return &testEnv{
		store:    store,
		userRepo: userRepo,
		bookRepo: bookRepo,
		txRepo:   txRepo,
		create:   NewCreateTransactionUseCase(txRepo, bookRepo, userRepo, tm, nil),
		update:   NewUpdateStatusUseCase(txRepo, tm, nil),
	}
}

// seedUser 插入一个带余额的用户
func (e *testEnv) seedUser(t *testing.T, email string, balance int64) *user.User {
	t.Helper()
	u := user.NewUser(email, "hashed", "测试用户", user.GenerateReferralCode())
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	u.Balance = balance
	require.NoError(t, e.userRepo.Update(context.Background(), u))
	return u
}

// seedBook 插入一本在售图书
func (e *testEnv) seedBook(t *testing.T, sellerID uint, price int64, stock int) *book.Book {
	t.Helper()
	b := book.NewBook("9787111213826", "Go程序设计语言", "Alan Donovan", "机械工业出版社",
		price, stock, "", "", sellerID)
	require.NoError(t, e.bookRepo.Create(context.Background(), b))
	return b
}

func TestCreateTransaction_BalancePayment(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 100000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      2,
		PaymentMethod: transaction.PaymentBalance,
		Address:       "Jl. Sudirman 1",
	})
	require.NoError(t, err)

	// 金额 = 锁定价格 × 数量
	assert.Equal(t, int64(17800), resp.Amount)
	// 余额支付的交易直接进入paid
	assert.Equal(t, "paid", resp.Status)

	// 钱包结算：买家扣款、卖家入账，总额守恒
	c, _ := env.userRepo.FindByID(context.Background(), customer.ID)
	s, _ := env.userRepo.FindByID(context.Background(), seller.ID)
	assert.Equal(t, int64(100000-17800), c.Balance)
	assert.Equal(t, int64(17800), s.Balance)
	assert.Equal(t, int64(100000), c.Balance+s.Balance)

	// 库存扣减
	got, _ := env.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 8, got.Stock)
}

func TestCreateTransaction_NonBalanceStaysPending(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 0)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)

	// 非余额支付不动钱包也不占库存，pending订单只是落库
	c, _ := env.userRepo.FindByID(context.Background(), customer.ID)
	assert.Equal(t, int64(0), c.Balance)
	got, _ := env.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 10, got.Stock)
	s, _ := env.userRepo.FindByID(context.Background(), seller.ID)
	assert.Equal(t, int64(0), s.Balance)
}

func TestCreateTransaction_UserLockOrder(t *testing.T) {
	// 钱包行按ID升序加锁：买家ID大于卖家ID时先锁卖家行
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 100000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, []uint{seller.ID, customer.ID}, env.userRepo.lockOrder)

	// 加锁顺序与结算方向无关：仍是买家扣款、卖家入账
	c, _ := env.userRepo.FindByID(context.Background(), customer.ID)
	s, _ := env.userRepo.FindByID(context.Background(), seller.ID)
	assert.Equal(t, int64(100000-8900), c.Balance)
	assert.Equal(t, int64(8900), s.Balance)
}

func TestCreateTransaction_InsufficientBalance(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 1000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	_, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	assert.ErrorIs(t, err, user.ErrInsufficientBalance)

	// 整体回滚：余额、库存都不变，交易未落库
	c, _ := env.userRepo.FindByID(context.Background(), customer.ID)
	assert.Equal(t, int64(1000), c.Balance)
	got, _ := env.bookRepo.FindByID(context.Background(), b.ID)
	assert.Equal(t, 10, got.Stock)
	assert.Empty(t, env.store.trxs)
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 1000000)
	b := env.seedBook(t, seller.ID, 8900, 2)

	_, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      3,
		PaymentMethod: transaction.PaymentBalance,
	})
	assert.ErrorIs(t, err, book.ErrInsufficientStock)

	c, _ := env.userRepo.FindByID(context.Background(), customer.ID)
	assert.Equal(t, int64(1000000), c.Balance)
	assert.Empty(t, env.store.trxs)
}

func TestCreateTransaction_SelfPurchase(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 100000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	_, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    seller.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	assert.ErrorIs(t, err, transaction.ErrSelfPurchase)
}

func TestUpdateStatus_SellerFulfillment(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 100000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	require.NoError(t, err)

	for _, target := range []string{"processing", "shipped"} {
		_, err := env.update.Execute(context.Background(), UpdateStatusRequest{
			TransactionID: resp.TransactionID,
			ActorID:       seller.ID,
			Role:          "seller",
			TargetStatus:  target,
		})
		require.NoError(t, err)
	}

	// 买家确认收货，received等价于delivered
	got, err := env.update.Execute(context.Background(), UpdateStatusRequest{
		TransactionID: resp.TransactionID,
		ActorID:       customer.ID,
		Role:          "customer",
		TargetStatus:  "received",
	})
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.To)
}

func TestUpdateStatus_UnauthorizedActor(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 100000)
	stranger := env.seedUser(t, "stranger@test.com", 0)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	require.NoError(t, err)

	// 路人无权流转
	_, err = env.update.Execute(context.Background(), UpdateStatusRequest{
		TransactionID: resp.TransactionID,
		ActorID:       stranger.ID,
		Role:          "seller",
		TargetStatus:  "processing",
	})
	assert.ErrorIs(t, err, transaction.ErrUnauthorizedTransition)

	// 买家不能发货
	_, err = env.update.Execute(context.Background(), UpdateStatusRequest{
		TransactionID: resp.TransactionID,
		ActorID:       customer.ID,
		Role:          "customer",
		TargetStatus:  "shipped",
	})
	assert.ErrorIs(t, err, transaction.ErrUnauthorizedTransition)

	// 失败的流转不落库
	trx, _ := env.txRepo.FindByID(context.Background(), resp.TransactionID)
	assert.Equal(t, transaction.StatusPaid, trx.Status)
}

func TestUpdateStatus_CustomerCancel(t *testing.T) {
	env := newTestEnv()
	seller := env.seedUser(t, "seller@test.com", 0)
	customer := env.seedUser(t, "customer@test.com", 100000)
	b := env.seedBook(t, seller.ID, 8900, 10)

	resp, err := env.create.Execute(context.Background(), CreateTransactionRequest{
		CustomerID:    customer.ID,
		BookID:        b.ID,
		Quantity:      1,
		PaymentMethod: transaction.PaymentBalance,
	})
	require.NoError(t, err)

	got, err := env.update.Execute(context.Background(), UpdateStatusRequest{
		TransactionID: resp.TransactionID,
		ActorID:       customer.ID,
		Role:          "customer",
		TargetStatus:  "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.To)

	// 取消后不能再流转
	_, err = env.update.Execute(context.Background(), UpdateStatusRequest{
		TransactionID: resp.TransactionID,
		ActorID:       seller.ID,
		Role:          "seller",
		TargetStatus:  "processing",
	})
	assert.ErrorIs(t, err, transaction.ErrInvalidStatusTransition)
}
