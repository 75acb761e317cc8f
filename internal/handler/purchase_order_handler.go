package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 仕入れ入荷の管理API（管理者のみ）
type PurchaseOrderHandler struct {
	uc *usecase.PurchaseOrderUsecase
}

func NewPurchaseOrderHandler(uc *usecase.PurchaseOrderUsecase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

type PurchaseOrderCreateRequest struct {
	SupplierID   int64                            `json:"supplier_id"`
	Note         string                           `json:"note"`
	ExpectedDate string                           `json:"expected_date"` // RFC3339、省略可
	Items        []usecase.PurchaseOrderItemInput `json:"items"`
}

func (h *PurchaseOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/purchase-orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id/complete", h.complete)
	g.POST("/:id/cancel", h.cancel)
}

func (h *PurchaseOrderHandler) create(c echo.Context) error {
	staffID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req PurchaseOrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	var expected *time.Time
	if req.ExpectedDate != "" {
		t, err := time.Parse(time.RFC3339, req.ExpectedDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expected_date"})
		}
		expected = &t
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.CreatePurchaseOrderInput{
		SupplierID:   req.SupplierID,
		StaffID:      staffID,
		Note:         req.Note,
		ExpectedDate: expected,
		Items:        req.Items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *PurchaseOrderHandler) list(c echo.Context) error {
	page, limit, err := pageLimitFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	outs, total, err := h.uc.List(c.Request().Context(), c.QueryParam("status"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"purchase_orders": outs, "total": total})
}

func (h *PurchaseOrderHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseOrderHandler) complete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Complete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "purchase order completed"})
}

func (h *PurchaseOrderHandler) cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Cancel(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "purchase order cancelled"})
}
