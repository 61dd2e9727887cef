package rating

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaepulHayat/bookmarket/internal/domain/book"
	"github.com/SaepulHayat/bookmarket/internal/domain/rating"
)

// ---- 内存版仓储 ----

type fakeRatingRepo struct {
	ratings map[uint]*rating.Rating
	nextID  uint
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[uint]*rating.Rating), nextID: 1}
}

func (r *fakeRatingRepo) Create(ctx context.Context, rt *rating.Rating) error {
	rt.ID = r.nextID
	r.nextID++
	c := *rt
	r.ratings[rt.ID] = &c
	return nil
}

func (r *fakeRatingRepo) FindByID(ctx context.Context, id uint) (*rating.Rating, error) {
	rt, ok := r.ratings[id]
	if !ok {
		return nil, rating.ErrRatingNotFound
	}
	c := *rt
	return &c, nil
}

func (r *fakeRatingRepo) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*rating.Rating, error) {
	for _, rt := range r.ratings {
		if rt.UserID == userID && rt.BookID == bookID {
			c := *rt
			return &c, nil
		}
	}
	return nil, rating.ErrRatingNotFound
}

func (r *fakeRatingRepo) Update(ctx context.Context, rt *rating.Rating) error {
	if _, ok := r.ratings[rt.ID]; !ok {
		return rating.ErrRatingNotFound
	}
	c := *rt
	r.ratings[rt.ID] = &c
	return nil
}

func (r *fakeRatingRepo) Delete(ctx context.Context, id uint) error {
	delete(r.ratings, id)
	return nil
}

func (r *fakeRatingRepo) DeleteByBookID(ctx context.Context, bookID uint) error {
	for id, rt := range r.ratings {
		if rt.BookID == bookID {
			delete(r.ratings, id)
		}
	}
	return nil
}

func (r *fakeRatingRepo) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*rating.Rating, int64, error) {
	var out []*rating.Rating
	for _, rt := range r.ratings {
		if rt.BookID == bookID {
			c := *rt
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRatingRepo) AverageByBookID(ctx context.Context, bookID uint) (float64, int64, error) {
	var sum, count int64
	for _, rt := range r.ratings {
		if rt.BookID == bookID {
			sum += int64(rt.Score)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakeBookRepo struct {
	books map[uint]*book.Book
	// 记录LockByID调用次数，用于校验评分变更持有图书行锁
	lockCalls int
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error { return nil }

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	c := *b
	return &c, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error { return nil }
func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error      { return nil }

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	r.lockCalls++
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error { return nil }

func (r *fakeBookRepo) UpdateAverageRating(ctx context.Context, id uint, avg float64) error {
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	b.AverageRating = avg
	return nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newRatingEnv() (*RateBookUseCase, *fakeBookRepo, *fakeRatingRepo) {
	bookRepo := &fakeBookRepo{books: map[uint]*book.Book{
		1: {ID: 1, Title: "Go程序设计语言", Price: 8900, Stock: 10, SellerID: 99},
	}}
	ratingRepo := newFakeRatingRepo()
	uc := NewRateBookUseCase(ratingRepo, bookRepo, passthroughTxManager{})
	return uc, bookRepo, ratingRepo
}

// TestRateBook_AverageLifecycle 覆盖新增/修改/删除后的平均分重算
func TestRateBook_AverageLifecycle(t *testing.T) {
	uc, bookRepo, _ := newRatingEnv()
	ctx := context.Background()

	// 用户A打4分，用户B打2分 → 平均3.00
	_, err := uc.Create(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 4})
	require.NoError(t, err)
	resp, err := uc.Create(ctx, RateBookRequest{UserID: 2, BookID: 1, Score: 2, Text: "一般"})
	require.NoError(t, err)
	assert.InDelta(t, 3.00, resp.AverageRating, 1e-9)
	assert.Equal(t, int64(2), resp.RatingCount)

	// 用户A改成5分 → 平均3.50
	resp, err = uc.Revise(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 5, Text: "重读后改分"})
	require.NoError(t, err)
	assert.InDelta(t, 3.50, resp.AverageRating, 1e-9)

	// 用户A删除评分 → 只剩B的2分
	require.NoError(t, uc.Remove(ctx, 1, 1))
	b, _ := bookRepo.FindByID(ctx, 1)
	assert.InDelta(t, 2.00, b.AverageRating, 1e-9)

	// 最后一条也删掉 → 平均分归零
	require.NoError(t, uc.Remove(ctx, 2, 1))
	b, _ = bookRepo.FindByID(ctx, 1)
	assert.Zero(t, b.AverageRating)
}

// TestRateBook_HalfUpRounding 平均分保留两位小数（四舍五入）
func TestRateBook_HalfUpRounding(t *testing.T) {
	uc, bookRepo, _ := newRatingEnv()
	ctx := context.Background()

	// 3+3+4 = 10/3 = 3.333... → 3.33
	for i, score := range []int{3, 3, 4} {
		_, err := uc.Create(ctx, RateBookRequest{UserID: uint(i + 1), BookID: 1, Score: score})
		require.NoError(t, err)
	}
	b, _ := bookRepo.FindByID(ctx, 1)
	assert.InDelta(t, 3.33, b.AverageRating, 1e-9)
	// 写回的值不携带多余精度
	assert.Equal(t, b.AverageRating, math.Round(b.AverageRating*100)/100)
}

// TestRateBook_MutationsLockBookRow 每次评分变更都先锁图书行
// 不加锁时两个并发评分各自按旧明细算均值，后提交的会把前一条覆盖掉
func TestRateBook_MutationsLockBookRow(t *testing.T) {
	uc, bookRepo, _ := newRatingEnv()
	ctx := context.Background()

	_, err := uc.Create(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, bookRepo.lockCalls)

	_, err = uc.Revise(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, bookRepo.lockCalls)

	require.NoError(t, uc.Remove(ctx, 1, 1))
	assert.Equal(t, 3, bookRepo.lockCalls)
}

func TestRateBook_DuplicateRejected(t *testing.T) {
	uc, _, _ := newRatingEnv()
	ctx := context.Background()

	_, err := uc.Create(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 4})
	require.NoError(t, err)

	_, err = uc.Create(ctx, RateBookRequest{UserID: 1, BookID: 1, Score: 5})
	assert.ErrorIs(t, err, rating.ErrDuplicateRating)
}

func TestRateBook_UnknownBook(t *testing.T) {
	uc, _, _ := newRatingEnv()

	_, err := uc.Create(context.Background(), RateBookRequest{UserID: 1, BookID: 404, Score: 4})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestRateBook_ReviseMissing(t *testing.T) {
	uc, _, _ := newRatingEnv()

	_, err := uc.Revise(context.Background(), RateBookRequest{UserID: 1, BookID: 1, Score: 4})
	assert.ErrorIs(t, err, rating.ErrRatingNotFound)
}
