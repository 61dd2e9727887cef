package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apprating "github.com/SaepulHayat/bookmarket/internal/application/rating"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/dto"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/middleware"
	"github.com/SaepulHayat/bookmarket/pkg/response"
)

// RatingHandler 评分HTTP处理器
type RatingHandler struct {
	rateBookUseCase *apprating.RateBookUseCase
	listUseCase     *apprating.ListBookRatingsUseCase
}

// NewRatingHandler 创建评分处理器
func NewRatingHandler(
	rateBookUseCase *apprating.RateBookUseCase,
	listUseCase *apprating.ListBookRatingsUseCase,
) *RatingHandler {
	return &RatingHandler{
		rateBookUseCase: rateBookUseCase,
		listUseCase:     listUseCase,
	}
}

// parseRatingBookID 解析路径参数中的图书ID
func parseRatingBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return 0, false
	}
	return uint(id), true
}

// Create 新增评分
// @Summary      评分
// @Description  对图书打分（1-5），一人一书只能评一次，图书平均分同步重算
// @Tags         评分
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RateBookRequest true "评分内容"
// @Success      200 {object} response.Response{data=apprating.RateBookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "已评分过"
// @Router       /api/v1/books/{id}/ratings [post]
func (h *RatingHandler) Create(c *gin.Context) {
	bookID, ok := parseRatingBookID(c)
	if !ok {
		return
	}

	var req dto.RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.rateBookUseCase.Create(c.Request.Context(), apprating.RateBookRequest{
		UserID: userID,
		BookID: bookID,
		Score:  req.Score,
		Text:   req.Text,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Revise 修改本人评分
// @Summary      修改评分
// @Tags         评分
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RateBookRequest true "新评分内容"
// @Success      200 {object} response.Response{data=apprating.RateBookResponse}
// @Failure      404 {object} response.Response "尚未评分"
// @Router       /api/v1/books/{id}/ratings [put]
func (h *RatingHandler) Revise(c *gin.Context) {
	bookID, ok := parseRatingBookID(c)
	if !ok {
		return
	}

	var req dto.RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.rateBookUseCase.Revise(c.Request.Context(), apprating.RateBookRequest{
		UserID: userID,
		BookID: bookID,
		Score:  req.Score,
		Text:   req.Text,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Remove 删除本人评分
// @Summary      删除评分
// @Tags         评分
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "尚未评分"
// @Router       /api/v1/books/{id}/ratings [delete]
func (h *RatingHandler) Remove(c *gin.Context) {
	bookID, ok := parseRatingBookID(c)
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)

	if err := h.rateBookUseCase.Remove(c.Request.Context(), userID, bookID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// List 查询图书评分列表
// @Summary      评分列表
// @Tags         评分
// @Produce      json
// @Param        id path int true "图书ID"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=apprating.ListBookRatingsResponse}
// @Router       /api/v1/books/{id}/ratings [get]
func (h *RatingHandler) List(c *gin.Context) {
	bookID, ok := parseRatingBookID(c)
	if !ok {
		return
	}

	var req dto.ListRatingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), bookID, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
