package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Webhook署名の検証口。本番はpayos.Client。
type WebhookVerifier interface {
	VerifyWebhookSignature(data map[string]any, signature string) bool
}

type PaymentHandler struct {
	uc       *usecase.PaymentUsecase
	verifier WebhookVerifier
	feURL    string
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, verifier WebhookVerifier, feURL string) *PaymentHandler {
	return &PaymentHandler{uc: uc, verifier: verifier, feURL: feURL}
}

type WebhookRequest struct {
	Code      string         `json:"code"`
	Desc      string         `json:"desc"`
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data"`
	Signature string         `json:"signature"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/:orderId/link", h.createLink)
	g.GET("/:orderId/status", h.checkStatus)
	g.POST("/:orderId/cancel", h.cancel)

	//webhookは署名で守るので認証なし
	e.POST("/payments/webhook", h.webhook)
}

func (h *PaymentHandler) createLink(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	returnURL := h.feURL + "/payment/success"
	cancelURL := h.feURL + "/payment/cancel"

	out, err := h.uc.CreatePaymentLink(c.Request().Context(), orderID, returnURL, cancelURL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) checkStatus(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.CheckStatus(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) cancel(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.CancelPayment(c.Request().Context(), orderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "payment cancelled"})
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Data == nil || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//署名の合わないwebhookは捨てる
	if !h.verifier.VerifyWebhookSignature(req.Data, req.Signature) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}

	orderCode, ok := webhookOrderCode(req.Data)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid orderCode"})
	}

	transactionID, _ := req.Data["reference"].(string)
	success := req.Success && req.Code == "00"

	if err := h.uc.HandleWebhook(c.Request().Context(), orderCode, success, transactionID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}

func webhookOrderCode(data map[string]any) (int64, bool) {
	switch v := data["orderCode"].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
