package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRating(t *testing.T) {
	t.Run("正常创建", func(t *testing.T) {
		r, err := NewRating(1, 2, 4, "内容不错")
		require.NoError(t, err)
		assert.Equal(t, 4, r.Score)
		assert.Equal(t, uint(2), r.BookID)
	})

	t.Run("边界分值", func(t *testing.T) {
		_, err := NewRating(1, 2, MinScore, "")
		assert.NoError(t, err)
		_, err = NewRating(1, 2, MaxScore, "")
		assert.NoError(t, err)
	})

	t.Run("分值超出范围", func(t *testing.T) {
		_, err := NewRating(1, 2, 0, "")
		assert.ErrorIs(t, err, ErrInvalidScore)
		_, err = NewRating(1, 2, 6, "")
		assert.ErrorIs(t, err, ErrInvalidScore)
	})
}

func TestRating_Revise(t *testing.T) {
	r, err := NewRating(1, 2, 4, "还行")
	require.NoError(t, err)

	t.Run("正常修改", func(t *testing.T) {
		require.NoError(t, r.Revise(5, "看完了，很好"))
		assert.Equal(t, 5, r.Score)
		assert.Equal(t, "看完了，很好", r.Text)
	})

	t.Run("非法分值不生效", func(t *testing.T) {
		err := r.Revise(6, "x")
		assert.ErrorIs(t, err, ErrInvalidScore)
		assert.Equal(t, 5, r.Score)
	})
}

func TestRating_IsOwnedBy(t *testing.T) {
	r, _ := NewRating(1, 2, 3, "")
	assert.True(t, r.IsOwnedBy(1))
	assert.False(t, r.IsOwnedBy(2))
}
