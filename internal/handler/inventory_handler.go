package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 在庫の管理API（管理者のみ）
type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

type StockAdjustRequest struct {
	Change int64  `json:"change"`
	Reason string `json:"reason"`
}

func (h *InventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/inventory")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/variants/:id/adjust", h.adjust)
	g.GET("/history", h.history)
	g.GET("/low-stock", h.lowStock)
}

func (h *InventoryHandler) adjust(c echo.Context) error {
	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req StockAdjustRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AdjustStock(c.Request().Context(), usecase.ManualAdjustInput{
		VariantID: variantID,
		Change:    req.Change,
		Reason:    req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) history(c echo.Context) error {
	page, limit, err := pageLimitFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	f := repo.StockHistoryFilter{
		Page:       page,
		Limit:      limit,
		ActionType: c.QueryParam("action_type"),
	}
	if v := c.QueryParam("variant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid variant_id"})
		}
		f.VariantID = &id
	}

	entries, total, err := h.uc.ListStockHistory(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"history": entries, "total": total})
}

func (h *InventoryHandler) lowStock(c echo.Context) error {
	page, limit, err := pageLimitFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	// threshold（default 10）
	threshold := int64(10)
	if v := c.QueryParam("threshold"); v != "" {
		t, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid threshold"})
		}
		threshold = t
	}

	variants, total, err := h.uc.ListLowStock(c.Request().Context(), threshold, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"variants": variants, "total": total})
}

func pageLimitFromQuery(c echo.Context) (int, int, error) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	return page, limit, nil
}
