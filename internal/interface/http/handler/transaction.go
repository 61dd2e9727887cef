package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apptrx "github.com/SaepulHayat/bookmarket/internal/application/transaction"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/dto"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/middleware"
	"github.com/SaepulHayat/bookmarket/pkg/response"
)

// TransactionHandler 交易HTTP处理器
type TransactionHandler struct {
	createUseCase *apptrx.CreateTransactionUseCase
	updateUseCase *apptrx.UpdateStatusUseCase
	listUseCase   *apptrx.ListTransactionsUseCase
	getUseCase    *apptrx.GetTransactionUseCase
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(
	createUseCase *apptrx.CreateTransactionUseCase,
	updateUseCase *apptrx.UpdateStatusUseCase,
	listUseCase *apptrx.ListTransactionsUseCase,
	getUseCase *apptrx.GetTransactionUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
	}
}

// parseTransactionID 解析路径参数中的交易ID
func parseTransactionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的交易ID")
		return 0, false
	}
	return uint(id), true
}

// Create 创建交易（下单）
// @Summary      创建交易
// @Description  买家下单。余额支付时在同一事务内完成扣款、给卖家入账、扣库存
// @Tags         交易
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateTransactionRequest true "下单信息"
// @Success      200 {object} response.Response{data=apptrx.CreateTransactionResponse}
// @Failure      400 {object} response.Response "参数错误/不能购买自己的图书"
// @Failure      402 {object} response.Response "余额不足"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.createUseCase.Execute(c.Request.Context(), apptrx.CreateTransactionRequest{
		CustomerID:    userID,
		BookID:        req.BookID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
		Courier:       req.Courier,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus 交易状态流转
// @Summary      交易状态流转
// @Description  卖家推进发货链路（processing/shipped/delivered），买家取消或确认收货（cancelled/received）
// @Tags         交易
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "交易ID"
// @Param        request body dto.UpdateTransactionStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apptrx.UpdateStatusResponse}
// @Failure      400 {object} response.Response "状态不允许此操作"
// @Failure      403 {object} response.Response "无权执行此状态变更"
// @Failure      404 {object} response.Response "交易不存在"
// @Router       /api/v1/transactions/{id}/status [put]
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req dto.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.updateUseCase.Execute(c.Request.Context(), apptrx.UpdateStatusRequest{
		TransactionID: id,
		ActorID:       userID,
		Role:          req.Role,
		TargetStatus:  req.Status,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// List 查询我的交易列表
// @Summary      交易列表
// @Description  按买家/卖家身份分页查询本人的交易
// @Tags         交易
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "身份" Enums(customer, seller) default(customer)
// @Param        status query string false "状态过滤"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=apptrx.ListTransactionsResponse}
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if req.Role == "" {
		req.Role = "customer"
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.listUseCase.Execute(c.Request.Context(), apptrx.ListTransactionsRequest{
		UserID:   userID,
		Role:     req.Role,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Get 查询交易详情
// @Summary      交易详情
// @Description  只有交易双方可见
// @Tags         交易
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "交易ID"
// @Success      200 {object} response.Response{data=apptrx.TransactionDetail}
// @Failure      403 {object} response.Response "非交易参与方"
// @Failure      404 {object} response.Response "交易不存在"
// @Router       /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseTransactionID(c)
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.getUseCase.Execute(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
