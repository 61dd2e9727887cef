package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBook_DecrStock 测试库存扣减
func TestBook_DecrStock(t *testing.T) {
	t.Run("正常扣减", func(t *testing.T) {
		b := &Book{ID: 1, Stock: 3}

		require.NoError(t, b.DecrStock(2))
		assert.Equal(t, 1, b.Stock)
	})

	t.Run("库存不足时不发生变更", func(t *testing.T) {
		b := &Book{ID: 1, Stock: 3}

		err := b.DecrStock(5)

		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 3, b.Stock, "失败时库存不应变化")
	})

	t.Run("扣减到0是合法的", func(t *testing.T) {
		b := &Book{ID: 1, Stock: 3}

		require.NoError(t, b.DecrStock(3))
		assert.Equal(t, 0, b.Stock)
	})

	t.Run("数量必须大于0", func(t *testing.T) {
		b := &Book{ID: 1, Stock: 3}

		assert.ErrorIs(t, b.DecrStock(0), ErrInvalidQuantity)
		assert.ErrorIs(t, b.DecrStock(-1), ErrInvalidQuantity)
		assert.Equal(t, 3, b.Stock)
	})
}

// TestBook_SetAverageRating 测试平均评分写入（四舍五入2位小数）
func TestBook_SetAverageRating(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"整数平均分", 3.0, 3.00},
		{"两人平均", 3.5, 3.50},
		{"三分之一循环小数", 10.0 / 3.0, 3.33},
		{"half-up进位", 3.125, 3.13},
		{"无评分归零", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Book{ID: 1}
			b.SetAverageRating(tc.in)
			assert.InDelta(t, tc.want, b.AverageRating, 0.0001)
		})
	}
}

// TestIsValidISBN 测试ISBN格式校验
func TestIsValidISBN(t *testing.T) {
	assert.True(t, isValidISBN("9787115428028"))
	assert.True(t, isValidISBN("978-7-115-42802-8"))
	assert.True(t, isValidISBN("7115428026"))
	assert.False(t, isValidISBN("12345"))
	assert.False(t, isValidISBN(""))
}
