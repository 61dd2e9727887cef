package handler

import (
	"github.com/gin-gonic/gin"

	appvoucher "github.com/SaepulHayat/bookmarket/internal/application/voucher"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/dto"
	"github.com/SaepulHayat/bookmarket/internal/interface/http/middleware"
	"github.com/SaepulHayat/bookmarket/pkg/response"
)

// VoucherHandler 代金券HTTP处理器
type VoucherHandler struct {
	redeemUseCase *appvoucher.RedeemVoucherUseCase
}

// NewVoucherHandler 创建代金券处理器
func NewVoucherHandler(redeemUseCase *appvoucher.RedeemVoucherUseCase) *VoucherHandler {
	return &VoucherHandler{redeemUseCase: redeemUseCase}
}

// Redeem 兑换代金券
// @Summary      兑换代金券
// @Description  校验券码后将面额充入钱包余额
// @Tags         代金券
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RedeemVoucherRequest true "券码"
// @Success      200 {object} response.Response{data=appvoucher.RedeemVoucherResponse}
// @Failure      404 {object} response.Response "代金券不存在"
// @Failure      409 {object} response.Response "已失效或已兑完"
// @Router       /api/v1/vouchers/redeem [post]
func (h *VoucherHandler) Redeem(c *gin.Context) {
	var req dto.RedeemVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.redeemUseCase.Execute(c.Request.Context(), appvoucher.RedeemVoucherRequest{
		UserID: userID,
		Code:   req.Code,
	})

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
