package dto

// RateBookRequest HTTP评分请求（新增与修改共用）
type RateBookRequest struct {
	Score int    `json:"score" binding:"required,min=1,max=5"`
	Text  string `json:"text" binding:"max=2000"`
}

// ListRatingsRequest HTTP评分列表请求（query参数）
type ListRatingsRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
