package rating

import (
	"time"
)

// Rating 评分实体
//
// 业务规则：
// 1. 分值为1-5的整数
// 2. 同一用户对同一本书只能有一条评分（可修改、可删除）
// 3. 评论文本可选
type Rating struct {
	ID        uint
	UserID    uint
	BookID    uint
	Score     int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRating 创建评分
func NewRating(userID, bookID uint, score int, text string) (*Rating, error) {
	if score < MinScore || score > MaxScore {
		return nil, ErrInvalidScore
	}
	now := time.Now()
	return &Rating{
		UserID:    userID,
		BookID:    bookID,
		Score:     score,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// 分值边界
const (
	MinScore = 1
	MaxScore = 5
)

// Revise 修改评分内容
func (r *Rating) Revise(score int, text string) error {
	if score < MinScore || score > MaxScore {
		return ErrInvalidScore
	}
	r.Score = score
	r.Text = text
	r.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 是否属于该用户
func (r *Rating) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}
