package dto

// PublishBookRequest HTTP上架请求
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
type PublishBookRequest struct {
	ISBN        string `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"max=100" example:"人民邮电出版社"`
	Price       int64  `json:"price" binding:"required,min=1,max=99999999" example:"5900"` // 价格(分),59.00元
	Stock       int    `json:"stock" binding:"min=0" example:"100"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateBookInfoRequest HTTP更新图书信息请求
type UpdateBookInfoRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Author      string `json:"author" binding:"required,max=100"`
	Publisher   string `json:"publisher" binding:"max=100"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateBookPriceRequest HTTP改价请求
type UpdateBookPriceRequest struct {
	Price int64 `json:"price" binding:"required,min=1,max=99999999"` // 价格(分)
}

// RestockRequest HTTP补货请求
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=9999"`
}

// ListBooksRequest HTTP图书列表请求（query参数）
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc rating_desc created_at_desc"`
}
