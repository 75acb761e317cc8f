package usecase

import (
	"context"
	"fmt"
	"time"

	"app/internal/domain/model"
	"app/internal/logger"
	repo "app/internal/repository"
)

const paymentTimeoutReason = "payment timeout"

// ReconcileUsecase はスケジューラから叩かれる2つの冪等バッチ。
// ローカル状態とプロバイダ状態、注文状態と放置された決済のずれを直す。
type ReconcileUsecase struct {
	tx       repo.TransactionManager
	payments *PaymentUsecase
	ledger   *StockLedger
	vouchers *VoucherService
}

func NewReconcileUsecase(tx repo.TransactionManager, payments *PaymentUsecase, ledger *StockLedger, vouchers *VoucherService) *ReconcileUsecase {
	return &ReconcileUsecase{tx: tx, payments: payments, ledger: ledger, vouchers: vouchers}
}

// PollPendingPayments はpendingのままの決済をプロバイダに問い合わせる。
// 1件の失敗はログに残してバッチを続ける（次の周回でまた拾われる）。
func (u *ReconcileUsecase) PollPendingPayments(ctx context.Context) error {
	var targets []model.Payment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		targets, err = r.Payments().ListPendingWithProvider(ctx, time.Now())
		return err
	})
	if err != nil {
		return err
	}

	for _, p := range targets {
		if _, err := u.payments.CheckStatus(ctx, p.OrderID); err != nil {
			logger.Warn("pending payment check failed", "order_id", p.OrderID, "err", err)
			continue
		}
	}
	return nil
}

// CancelExpiredPayments は決済期限の切れたpending注文を1件ずつ
// キャンセル＋在庫戻しする。注文ごとに独立したトランザクションなので、
// 途中で落ちても処理済みの注文はselect条件に引っかからなくなる。
func (u *ReconcileUsecase) CancelExpiredPayments(ctx context.Context) error {
	var expired []model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		expired, err = r.Orders().ListExpiredPending(ctx, time.Now())
		return err
	})
	if err != nil {
		return err
	}

	for _, o := range expired {
		if err := u.cancelExpiredOrder(ctx, o.ID); err != nil {
			logger.Warn("expired order cancel failed", "order_id", o.ID, "err", err)
			continue
		}
	}
	return nil
}

func (u *ReconcileUsecase) cancelExpiredOrder(ctx context.Context, orderID int64) error {
	var voucherID *int64
	var userID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		//selectからここまでの間に状態が変わっていたら何もしない
		//（別のtickや対話的キャンセルと競合しても安全）
		if o.Status != model.OrderStatusPending {
			return nil
		}

		p, err := r.Payments().FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
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
				Reason:        paymentTimeoutReason,
				ReferenceID:   &refID,
				ReferenceType: "order",
			}); err != nil {
				return err
			}
		}

		//通常キャンセルと同じ守り（deliveredに達していた場合だけ販売数を戻す）
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
		o.CancelReason = paymentTimeoutReason
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
		if err := r.Orders().Update(ctx, o); err != nil {
			return err
		}

		p.Status = model.PaymentStatusCancelled
		if err := r.Payments().Update(ctx, p); err != nil {
			return err
		}

		voucherID = o.VoucherID
		userID = o.UserID
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel expired order %d: %w", orderID, err)
	}

	if voucherID != nil {
		if err := u.vouchers.Release(ctx, *voucherID, userID); err != nil {
			logger.Error("voucher release failed after expiry cancel",
				"order_id", orderID, "voucher_id", *voucherID, "err", err)
		}
	}
	return nil
}
