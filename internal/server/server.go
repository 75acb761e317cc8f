package server

import (
	"context"
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Order         *handler.OrderHandler
	Payment       *handler.PaymentHandler
	Inventory     *handler.InventoryHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Voucher       *handler.VoucherHandler
}

func New(cfg config.Config, hs Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	hs.Order.RegisterRoutes(e, cfg)
	hs.Payment.RegisterRoutes(e, cfg)
	hs.Inventory.RegisterRoutes(e, cfg)
	hs.PurchaseOrder.RegisterRoutes(e, cfg)
	hs.Voucher.RegisterRoutes(e, cfg)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

func Shutdown(ctx context.Context, e *echo.Echo) error {
	return e.Shutdown(ctx)
}
