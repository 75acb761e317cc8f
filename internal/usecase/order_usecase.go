package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/logger"
	repo "app/internal/repository"
)

// 全国一律の送料
const StandardShippingFee int64 = 30000

// 当日連番の衝突時にやり直す回数
const orderCodeRetries = 3

// 注文確定メールなどの通知先。失敗してもログに残すだけで、
// コミット済みの注文は巻き戻さない。
type Notifier interface {
	NotifyOrderConfirmed(ctx context.Context, order OrderOutput) error
}

type OrderUsecase struct {
	tx       repo.TransactionManager
	ledger   *StockLedger
	vouchers *VoucherService
	notifier Notifier
}

func NewOrderUsecase(tx repo.TransactionManager, ledger *StockLedger, vouchers *VoucherService, notifier Notifier) *OrderUsecase {
	return &OrderUsecase{tx: tx, ledger: ledger, vouchers: vouchers, notifier: notifier}
}

type CreateOrderItemInput struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

type CreateOrderInput struct {
	UserID                int64
	PaymentMethod         string
	ReceiverName          string
	ReceiverPhone         string
	ReceiverEmail         string
	ShippingProvince      string
	ShippingWard          string
	ShippingDetailAddress string
	Note                  string
	VoucherCode           string
	Items                 []CreateOrderItemInput
}

type OrderItemOutput struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	SubTotal  int64 `json:"sub_total"`
}

type OrderOutput struct {
	ID                    int64             `json:"id"`
	OrderCode             string            `json:"order_code"`
	UserID                int64             `json:"user_id"`
	Status                string            `json:"status"`
	SubTotal              int64             `json:"sub_total"`
	ShippingFee           int64             `json:"shipping_fee"`
	VoucherDiscountAmount int64             `json:"voucher_discount_amount"`
	TotalAmount           int64             `json:"total_amount"`
	PaymentMethod         string            `json:"payment_method"`
	PaymentStatus         string            `json:"payment_status"`
	ReceiverEmail         string            `json:"receiver_email,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	Items                 []OrderItemOutput `json:"items"`
}

func parsePaymentMethod(s string) (model.PaymentMethod, bool) {
	switch model.PaymentMethod(s) {
	case model.PaymentMethodCOD, model.PaymentMethodBankTransfer, model.PaymentMethodPayOS:
		return model.PaymentMethod(s), true
	}
	return "", false
}

// CreateOrder は注文・明細・支払いレコードの作成と在庫引当を
// ひとつのトランザクションで行う。どこかで失敗したら全部ロールバック。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if in.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}
	for _, it := range in.Items {
		if it.VariantID <= 0 || it.Quantity <= 0 || it.UnitPrice < 0 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}
	method, ok := parsePaymentMethod(in.PaymentMethod)
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	if strings.TrimSpace(in.ReceiverName) == "" || strings.TrimSpace(in.ReceiverPhone) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "receiver name and phone are required")
	}

	var out OrderOutput
	var voucherID *int64
	var discount int64

	createTx := func(r repo.TxRepos) error {
		//小計は呼び出し側が解決済みの単価で計算する（再価格付けはしない）
		var subTotal int64
		for _, it := range in.Items {
			subTotal += it.UnitPrice * it.Quantity
		}

		//バウチャー検証と割引計算
		if strings.TrimSpace(in.VoucherCode) != "" {
			v, err := u.vouchers.Validate(ctx, r, in.VoucherCode, &in.UserID, subTotal)
			if err != nil {
				return err
			}
			discount = CalculateDiscount(v, subTotal, StandardShippingFee)
			voucherID = &v.ID
		}

		total := subTotal + StandardShippingFee - discount

		code, err := u.nextOrderCode(ctx, r)
		if err != nil {
			return err
		}

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:                in.UserID,
			OrderCode:             code,
			Status:                model.OrderStatusPending,
			SubTotal:              subTotal,
			ShippingFee:           StandardShippingFee,
			VoucherDiscountAmount: discount,
			TotalAmount:           total,
			VoucherID:             voucherID,
			ReceiverName:          in.ReceiverName,
			ReceiverPhone:         in.ReceiverPhone,
			ReceiverEmail:         in.ReceiverEmail,
			ShippingProvince:      in.ShippingProvince,
			ShippingWard:          in.ShippingWard,
			ShippingDetailAddress: in.ShippingDetailAddress,
			Note:                  in.Note,
		})
		if err != nil {
			return err
		}

		if _, err := r.Payments().Create(ctx, model.Payment{
			OrderID: orderID,
			Method:  method,
			Status:  model.PaymentStatusPending,
		}); err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.OrderItem{
				VariantID: it.VariantID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				SubTotal:  it.UnitPrice * it.Quantity,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return err
		}

		//在庫引当。足りなければここで全体が巻き戻る。
		for _, it := range in.Items {
			refID := orderID
			if _, err := u.ledger.Adjust(ctx, r, AdjustStockInput{
				VariantID:     it.VariantID,
				Delta:         -it.Quantity,
				ActionType:    model.StockActionSale,
				Reason:        "order " + code,
				ReferenceID:   &refID,
				ReferenceType: "order",
			}); err != nil {
				return err
			}
		}

		out = OrderOutput{
			ID:                    orderID,
			OrderCode:             code,
			UserID:                in.UserID,
			Status:                string(model.OrderStatusPending),
			SubTotal:              subTotal,
			ShippingFee:           StandardShippingFee,
			VoucherDiscountAmount: discount,
			TotalAmount:           total,
			PaymentMethod:         string(method),
			PaymentStatus:         string(model.PaymentStatusPending),
			ReceiverEmail:         in.ReceiverEmail,
			CreatedAt:             time.Now(),
			Items:                 toItemOutputs(items),
		}
		return nil
	}

	//同時チェックアウトで当日連番が衝突したらトランザクションごとやり直す
	var err error
	for attempt := 1; attempt <= orderCodeRetries; attempt++ {
		voucherID = nil
		discount = 0
		err = u.tx.WithinTx(ctx, createTx)
		if !errors.Is(err, repo.ErrDuplicate) {
			break
		}
		logger.Warn("order code collision, retrying", "attempt", attempt)
	}
	if err != nil {
		return OrderOutput{}, err
	}

	//コミット後のベストエフォート。失敗してもログだけで注文は確定のまま。
	if voucherID != nil {
		if err := u.vouchers.Consume(ctx, *voucherID, in.UserID, out.ID, discount); err != nil {
			logger.Error("voucher consume failed after order commit",
				"order_id", out.ID, "voucher_id", *voucherID, "err", err)
		}
	}
	if u.notifier != nil {
		if err := u.notifier.NotifyOrderConfirmed(ctx, out); err != nil {
			logger.Error("order confirmation notify failed", "order_id", out.ID, "err", err)
		}
	}

	return out, nil
}

// 当日の連番から注文コードを作る（例: ORD20260828-0007）
func (u *OrderUsecase) nextOrderCode(ctx context.Context, r repo.TxRepos) (string, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err := r.Orders().CountCreatedBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD%s-%04d", now.Format("20060102"), n+1), nil
}

// UpdateStatus は前進のみの状態遷移。
// pending → processing → shipped → delivered。キャンセルはCancelOrderで。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, orderID int64, newStatus string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	switch model.OrderStatus(newStatus) {
	case model.OrderStatusProcessing, model.OrderStatusShipped, model.OrderStatusDelivered:
		// OK
	case model.OrderStatusCancelled:
		return NewHTTPError(http.StatusBadRequest, "use the cancel operation")
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		now := time.Now()

		switch model.OrderStatus(newStatus) {
		case model.OrderStatusProcessing:
			if o.Status != model.OrderStatusPending {
				return fmt.Errorf("%w: %s -> processing", ErrInvalidTransition, o.Status)
			}
			o.Status = model.OrderStatusProcessing
			if o.ProcessingAt == nil {
				o.ProcessingAt = &now
			}

		case model.OrderStatusShipped:
			if o.Status != model.OrderStatusProcessing {
				return fmt.Errorf("%w: %s -> shipped", ErrInvalidTransition, o.Status)
			}
			//前払いの決済方法は支払い完了まで出荷できない
			p, err := r.Payments().FindByOrderID(ctx, orderID)
			if err != nil {
				return err
			}
			if p.Method.RequiresPrepayment() && p.Status != model.PaymentStatusPaid {
				return fmt.Errorf("%w: method %s, payment %s", ErrPaymentNotCompleted, p.Method, p.Status)
			}
			o.Status = model.OrderStatusShipped
			if o.ShippedAt == nil {
				o.ShippedAt = &now
			}

		case model.OrderStatusDelivered:
			if o.Status != model.OrderStatusShipped {
				return fmt.Errorf("%w: %s -> delivered", ErrInvalidTransition, o.Status)
			}
			//deliveredへの最初の遷移でだけ販売数を加算する
			//（現在statusがshippedであることを先に見ているので二重加算しない）
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return err
			}
			for _, it := range items {
				v, err := r.Variants().FindByID(ctx, it.VariantID)
				if err != nil {
					return err
				}
				if err := r.Products().IncrementSold(ctx, v.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			o.Status = model.OrderStatusDelivered
			if o.DeliveredAt == nil {
				o.DeliveredAt = &now
			}
		}

		return r.Orders().Update(ctx, o)
	})
}

// CancelOrder はpendingの注文だけをキャンセルできる。
// 在庫戻し・支払いの巻き戻しは同一トランザクション、バウチャー返却はコミット後。
func (u *OrderUsecase) CancelOrder(ctx context.Context, orderID int64, reason string) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "cancelled by user"
	}

	var voucherID *int64
	var userID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		//ロックを取ってから現在statusを確認（掃除ジョブとの競合対策）
		if o.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, o.Status)
		}

		p, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		//paidはrefundedへ、それ以外はcancelledへ
		if p.Status == model.PaymentStatusPaid {
			p.Status = model.PaymentStatusRefunded
		} else {
			p.Status = model.PaymentStatusCancelled
		}
		if err := r.Payments().Update(ctx, p); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, it := range items {
			refID := orderID
			if _, err := u.ledger.Adjust(ctx, r, AdjustStockInput{
				VariantID:     it.VariantID,
				Delta:         it.Quantity,
				ActionType:    model.StockActionOrderCancelled,
				Reason:        reason,
				ReferenceID:   &refID,
				ReferenceType: "order",
			}); err != nil {
				return err
			}
		}

		//販売数はdelivered到達時にしか増えないので、pendingキャンセルでは
		//ここは通らないはず。到達していた場合だけ巻き戻す。
		if o.DeliveredAt != nil {
			for _, it := range items {
				v, err := r.Variants().FindByID(ctx, it.VariantID)
				if err != nil {
					return err
				}
				if err := r.Products().IncrementSold(ctx, v.ProductID, -it.Quantity); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		o.Status = model.OrderStatusCancelled
		o.CancelReason = reason
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
		if err := r.Orders().Update(ctx, o); err != nil {
			return err
		}

		voucherID = o.VoucherID
		userID = o.UserID
		return nil
	})
	if err != nil {
		return err
	}

	//コミット後のベストエフォート
	if voucherID != nil {
		if err := u.vouchers.Release(ctx, *voucherID, userID); err != nil {
			logger.Error("voucher release failed after cancel",
				"order_id", orderID, "voucher_id", *voucherID, "err", err)
		}
	}

	return nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		p, err := r.Payments().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, p, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListOrders(ctx context.Context, f repo.OrderListFilter) ([]OrderOutput, int64, error) {
	if f.Page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []OrderOutput
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().List(ctx, f)
		if err != nil {
			return err
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			p, err := r.Payments().FindByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			outs = append(outs, toOrderOutput(o, p, items))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

func toItemOutputs(items []model.OrderItem) []OrderItemOutput {
	outs := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outs = append(outs, OrderItemOutput{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			SubTotal:  it.SubTotal,
		})
	}
	return outs
}

func toOrderOutput(o model.Order, p model.Payment, items []model.OrderItem) OrderOutput {
	return OrderOutput{
		ID:                    o.ID,
		OrderCode:             o.OrderCode,
		UserID:                o.UserID,
		Status:                string(o.Status),
		SubTotal:              o.SubTotal,
		ShippingFee:           o.ShippingFee,
		VoucherDiscountAmount: o.VoucherDiscountAmount,
		TotalAmount:           o.TotalAmount,
		PaymentMethod:         string(p.Method),
		PaymentStatus:         string(p.Status),
		ReceiverEmail:         o.ReceiverEmail,
		CreatedAt:             o.CreatedAt,
		Items:                 toItemOutputs(items),
	}
}
