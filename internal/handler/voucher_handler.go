package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type VoucherHandler struct {
	svc *usecase.VoucherService
}

func NewVoucherHandler(svc *usecase.VoucherService) *VoucherHandler {
	return &VoucherHandler{svc: svc}
}

type VoucherValidateRequest struct {
	Code        string `json:"code"`
	OrderAmount int64  `json:"order_amount"`
}

type VoucherValidateResponse struct {
	Code           string `json:"code"`
	DiscountType   string `json:"discount_type"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
}

func (h *VoucherHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/vouchers")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/validate", h.validate)
}

// 注文前の割引プレビュー。ここでは消費しない。
func (h *VoucherHandler) validate(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VoucherValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "code is required"})
	}
	if req.OrderAmount < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order_amount"})
	}

	v, err := h.svc.ValidateCode(c.Request().Context(), req.Code, &userID, req.OrderAmount)
	if err != nil {
		return writeError(c, err)
	}

	discount := usecase.CalculateDiscount(v, req.OrderAmount, usecase.StandardShippingFee)
	total := req.OrderAmount + usecase.StandardShippingFee - discount

	return c.JSON(http.StatusOK, VoucherValidateResponse{
		Code:           v.Code,
		DiscountType:   string(v.DiscountType),
		DiscountAmount: discount,
		FinalAmount:    total,
	})
}
