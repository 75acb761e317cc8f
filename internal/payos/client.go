package payos

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"app/internal/usecase"
)

const defaultBaseURL = "https://api-merchant.payos.vn"

// PayOSのREST APIクライアント。usecase.PaymentProviderを満たす。
type Client struct {
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	httpClient  *http.Client
}

func NewClient(clientID, apiKey, checksumKey string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type createRequest struct {
	OrderCode   int64          `json:"orderCode"`
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
	Items       []checkoutItem `json:"items"`
	ReturnURL   string         `json:"returnUrl"`
	CancelURL   string         `json:"cancelUrl"`
	Signature   string         `json:"signature"`
}

type checkoutItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

type apiResponse struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

type createData struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type statusData struct {
	Status       string `json:"status"`
	Transactions []struct {
		Reference string `json:"reference"`
	} `json:"transactions"`
}

// 署名はキー名のアルファベット順で連結してHMAC-SHA256
func (c *Client) sign(in usecase.CreateCheckoutInput) string {
	payload := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		in.Amount, in.CancelURL, in.Description, in.OrderCode, in.ReturnURL)
	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) CreateCheckout(ctx context.Context, in usecase.CreateCheckoutInput) (usecase.CheckoutSession, error) {
	items := make([]checkoutItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, checkoutItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	reqBody := createRequest{
		OrderCode:   in.OrderCode,
		Amount:      in.Amount,
		Description: in.Description,
		Items:       items,
		ReturnURL:   in.ReturnURL,
		CancelURL:   in.CancelURL,
		Signature:   c.sign(in),
	}

	var data createData
	if err := c.do(ctx, http.MethodPost, "/v2/payment-requests", reqBody, &data); err != nil {
		return usecase.CheckoutSession{}, err
	}
	if data.CheckoutURL == "" {
		return usecase.CheckoutSession{}, fmt.Errorf("payos: empty checkout url")
	}
	return usecase.CheckoutSession{CheckoutURL: data.CheckoutURL}, nil
}

func (c *Client) GetStatus(ctx context.Context, orderCode int64) (usecase.ProviderPaymentInfo, error) {
	var data statusData
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return usecase.ProviderPaymentInfo{}, err
	}

	info := usecase.ProviderPaymentInfo{Status: usecase.ProviderStatus(data.Status)}
	if len(data.Transactions) > 0 {
		info.TransactionID = data.Transactions[0].Reference
	}
	return info, nil
}

func (c *Client) Cancel(ctx context.Context, orderCode int64) error {
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	body := map[string]string{"cancellationReason": "order cancelled"}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-request-id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payos: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payos: read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("payos: server error %d", resp.StatusCode)
	}

	var ar apiResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return fmt.Errorf("payos: decode response: %w", err)
	}
	// "00"が成功
	if ar.Code != "00" {
		return fmt.Errorf("payos: %s (%s)", ar.Desc, ar.Code)
	}
	if out != nil {
		if err := json.Unmarshal(ar.Data, out); err != nil {
			return fmt.Errorf("payos: decode data: %w", err)
		}
	}
	return nil
}
