package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/logger"
	repo "app/internal/repository"
)

// 決済リンクの有効期限
const PaymentLinkTTL = 15 * time.Minute

// 決済プロバイダの状態
type ProviderStatus string

const (
	ProviderStatusPending   ProviderStatus = "PENDING"
	ProviderStatusPaid      ProviderStatus = "PAID"
	ProviderStatusCancelled ProviderStatus = "CANCELLED"
	ProviderStatusExpired   ProviderStatus = "EXPIRED"
)

type CheckoutItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

type CreateCheckoutInput struct {
	OrderCode   int64
	Amount      int64
	Description string
	Items       []CheckoutItem
	ReturnURL   string
	CancelURL   string
}

type CheckoutSession struct {
	CheckoutURL string
}

type ProviderPaymentInfo struct {
	Status        ProviderStatus
	TransactionID string
}

// 外部決済プロバイダへの口。DBトランザクションの外からだけ呼ぶ。
type PaymentProvider interface {
	CreateCheckout(ctx context.Context, in CreateCheckoutInput) (CheckoutSession, error)
	GetStatus(ctx context.Context, orderCode int64) (ProviderPaymentInfo, error)
	Cancel(ctx context.Context, orderCode int64) error
}

type PaymentUsecase struct {
	tx       repo.TransactionManager
	provider PaymentProvider
}

func NewPaymentUsecase(tx repo.TransactionManager, provider PaymentProvider) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, provider: provider}
}

type PaymentLinkOutput struct {
	CheckoutURL string    `json:"checkout_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	OrderCode   int64     `json:"order_code"`
	Amount      int64     `json:"amount"`
}

type PaymentStatusOutput struct {
	Status string `json:"status"`
}

// CreatePaymentLink は決済リンクを発行する。
// 有効なリンクが残っていればそれを返し、なければプロバイダに新規作成を頼む。
// プロバイダ呼び出しはトランザクションの外（ロックを持ったままネットワークに出ない）。
func (u *PaymentUsecase) CreatePaymentLink(ctx context.Context, orderID int64, returnURL string, cancelURL string) (PaymentLinkOutput, error) {
	if orderID <= 0 {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var o model.Order
	var p model.Payment
	var checkoutItems []CheckoutItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		o, err = r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return err
		}
		p, err = r.Payments().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		checkoutItems = make([]CheckoutItem, 0, len(items))
		for _, it := range items {
			v, err := r.Variants().FindByID(ctx, it.VariantID)
			if err != nil {
				return err
			}
			prod, err := r.Products().FindByID(ctx, v.ProductID)
			if err != nil {
				return err
			}
			checkoutItems = append(checkoutItems, CheckoutItem{
				Name:     prod.Name,
				Quantity: it.Quantity,
				Price:    it.UnitPrice,
			})
		}
		return nil
	})
	if err != nil {
		return PaymentLinkOutput{}, err
	}

	if o.Status == model.OrderStatusCancelled {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusConflict, "order is cancelled")
	}
	if p.Status == model.PaymentStatusPaid {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusConflict, "order already paid")
	}
	if p.Method == model.PaymentMethodCOD {
		return PaymentLinkOutput{}, NewHTTPError(http.StatusBadRequest, "cod order does not need a payment link")
	}

	//まだ有効なリンクがあれば再利用
	now := time.Now()
	if p.ProviderOrderCode != nil && p.CheckoutURL != "" && p.ExpiresAt != nil && p.ExpiresAt.After(now) {
		return PaymentLinkOutput{
			CheckoutURL: p.CheckoutURL,
			ExpiresAt:   *p.ExpiresAt,
			OrderCode:   *p.ProviderOrderCode,
			Amount:      o.TotalAmount,
		}, nil
	}

	//プロバイダ側の相関IDは数値（9桁ランダム）
	orderCode := int64(100000000 + rand.Intn(900000000))

	session, err := u.provider.CreateCheckout(ctx, CreateCheckoutInput{
		OrderCode:   orderCode,
		Amount:      o.TotalAmount,
		Description: "order " + o.OrderCode,
		Items:       checkoutItems,
		ReturnURL:   returnURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		return PaymentLinkOutput{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	expiresAt := now.Add(PaymentLinkTTL)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if cur.Status == model.PaymentStatusPaid {
			return NewHTTPError(http.StatusConflict, "order already paid")
		}
		cur.ProviderOrderCode = &orderCode
		cur.CheckoutURL = session.CheckoutURL
		cur.ExpiresAt = &expiresAt
		return r.Payments().Update(ctx, cur)
	})
	if err != nil {
		return PaymentLinkOutput{}, err
	}

	return PaymentLinkOutput{
		CheckoutURL: session.CheckoutURL,
		ExpiresAt:   expiresAt,
		OrderCode:   orderCode,
		Amount:      o.TotalAmount,
	}, nil
}

// CheckStatus はプロバイダの状態をローカルへ反映する。
// ローカルで既にpaidならプロバイダに聞かない。
func (u *PaymentUsecase) CheckStatus(ctx context.Context, orderID int64) (PaymentStatusOutput, error) {
	if orderID <= 0 {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var p model.Payment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Payments().FindByOrderID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return err
	})
	if err != nil {
		return PaymentStatusOutput{}, err
	}

	if p.Status == model.PaymentStatusPaid {
		return PaymentStatusOutput{Status: string(model.PaymentStatusPaid)}, nil
	}
	if p.ProviderOrderCode == nil {
		return PaymentStatusOutput{Status: string(p.Status)}, nil
	}

	info, err := u.provider.GetStatus(ctx, *p.ProviderOrderCode)
	if err != nil {
		return PaymentStatusOutput{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	switch info.Status {
	case ProviderStatusPaid:
		if err := u.HandleSuccess(ctx, orderID, info.TransactionID); err != nil {
			return PaymentStatusOutput{}, err
		}
		return PaymentStatusOutput{Status: string(model.PaymentStatusPaid)}, nil
	case ProviderStatusCancelled, ProviderStatusExpired:
		if err := u.HandleFailure(ctx, orderID); err != nil {
			return PaymentStatusOutput{}, err
		}
		return PaymentStatusOutput{Status: string(model.PaymentStatusFailed)}, nil
	default:
		return PaymentStatusOutput{Status: string(model.PaymentStatusPending)}, nil
	}
}

// HandleSuccess は支払い確定をローカルに反映する。
// 既にpaidなら何もしない（同じ結果で二度呼ばれても二重適用しない）。
func (u *PaymentUsecase) HandleSuccess(ctx context.Context, orderID int64, transactionID string) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusPaid {
			return nil
		}

		now := time.Now()
		p.Status = model.PaymentStatusPaid
		p.ProviderTransactionID = transactionID
		if p.PaidAt == nil {
			p.PaidAt = &now
		}
		if err := r.Payments().Update(ctx, p); err != nil {
			return err
		}

		//注文がpendingならprocessingへ進める
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == model.OrderStatusPending {
			o.Status = model.OrderStatusProcessing
			if o.ProcessingAt == nil {
				o.ProcessingAt = &now
			}
			if err := r.Orders().Update(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

// HandleFailure は支払い失敗をローカルに反映する。
// 注文と在庫には触らない（失敗した決済は客がやり直せる）。
func (u *PaymentUsecase) HandleFailure(ctx context.Context, orderID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		if err != nil {
			return err
		}
		if p.Status == model.PaymentStatusFailed {
			return nil
		}
		//paidはrefunded以外へ遷移させない
		if p.Status == model.PaymentStatusPaid {
			return fmt.Errorf("%w: paid -> failed", ErrInvalidTransition)
		}

		now := time.Now()
		p.Status = model.PaymentStatusFailed
		if p.FailedAt == nil {
			p.FailedAt = &now
		}
		return r.Payments().Update(ctx, p)
	})
}

// CancelPayment はリンク発行済みの決済を取り消す。プロバイダ側の取り消しはベストエフォート。
func (u *PaymentUsecase) CancelPayment(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var p model.Payment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Payments().FindByOrderID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return err
	})
	if err != nil {
		return err
	}

	if p.Status == model.PaymentStatusPaid {
		return NewHTTPError(http.StatusConflict, "cannot cancel a paid payment")
	}

	if p.ProviderOrderCode != nil {
		if err := u.provider.Cancel(ctx, *p.ProviderOrderCode); err != nil {
			logger.Warn("provider cancel failed", "order_id", orderID, "err", err)
		}
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if cur.Status == model.PaymentStatusPaid {
			return NewHTTPError(http.StatusConflict, "cannot cancel a paid payment")
		}
		cur.Status = model.PaymentStatusCancelled
		return r.Payments().Update(ctx, cur)
	})
}

// HandleWebhook はプロバイダからの通知を取り込む。
// orderCodeから対象の支払いを引き、成功/失敗を反映する。冪等。
func (u *PaymentUsecase) HandleWebhook(ctx context.Context, orderCode int64, success bool, transactionID string) error {
	var p model.Payment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		p, err = r.Payments().FindByProviderOrderCode(ctx, orderCode)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return err
	})
	if err != nil {
		return err
	}

	if success {
		return u.HandleSuccess(ctx, p.OrderID, transactionID)
	}
	return u.HandleFailure(ctx, p.OrderID)
}
