package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/logger"
	repo "app/internal/repository"
)

type VoucherService struct {
	tx repo.TransactionManager
}

func NewVoucherService(tx repo.TransactionManager) *VoucherService {
	return &VoucherService{tx: tx}
}

// Validate は注文作成トランザクションの中から呼ばれる。
// 条件は順番に見て、最初に落ちた理由を返す。
func (s *VoucherService) Validate(ctx context.Context, r repo.TxRepos, code string, userID *int64, orderAmount int64) (model.Voucher, error) {
	v, err := r.Vouchers().FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return model.Voucher{}, ErrVoucherNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}

	if !v.Active {
		return model.Voucher{}, ErrVoucherInactive
	}

	//end_dateはその日の終わりまで有効
	now := time.Now()
	endOfDay := time.Date(v.EndDate.Year(), v.EndDate.Month(), v.EndDate.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), v.EndDate.Location())
	if now.Before(v.StartDate) || now.After(endOfDay) {
		return model.Voucher{}, ErrVoucherNotInWindow
	}

	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return model.Voucher{}, ErrVoucherExhausted
	}

	if orderAmount < v.MinOrderAmount {
		return model.Voucher{}, ErrVoucherMinOrder
	}

	if userID != nil {
		usage, found, err := r.Vouchers().FindUsage(ctx, *userID, v.ID)
		if err != nil {
			return model.Voucher{}, err
		}
		if found && usage.UsedCount >= v.UserLimit {
			return model.Voucher{}, ErrVoucherUserLimit
		}
	}

	return v, nil
}

// ValidateCode は単発検証用（注文前のチェックAPIなど）。自前のトランザクションで読む。
func (s *VoucherService) ValidateCode(ctx context.Context, code string, userID *int64, orderAmount int64) (model.Voucher, error) {
	var v model.Voucher
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := s.Validate(ctx, r, code, userID, orderAmount)
		if err != nil {
			return err
		}
		v = found
		return nil
	})
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

// CalculateDiscount は純粋関数。I/Oなし。
// 結果は最小通貨単位に丸め、負にはならない。
func CalculateDiscount(v model.Voucher, orderAmount int64, shippingFee int64) int64 {
	var discount int64

	switch v.DiscountType {
	case model.DiscountTypePercentage:
		//四捨五入
		discount = (orderAmount*v.DiscountValue + 50) / 100
		if v.MaxDiscountAmount > 0 && discount > v.MaxDiscountAmount {
			discount = v.MaxDiscountAmount
		}
	case model.DiscountTypeFixedAmount:
		discount = v.DiscountValue
		if discount > orderAmount {
			discount = orderAmount
		}
	case model.DiscountTypeFreeShipping:
		discount = shippingFee
	}

	if discount < 0 {
		discount = 0
	}
	return discount
}

// Consume は注文コミット後に呼ぶ。order_idで冪等なので再実行しても二重計上しない。
func (s *VoucherService) Consume(ctx context.Context, voucherID int64, userID int64, orderID int64, discountAmount int64) error {
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//既にこの注文で消費済みなら何もしない
		_, found, err := r.Vouchers().FindOrderVoucher(ctx, orderID)
		if err != nil {
			return err
		}
		if found {
			return nil
		}

		//order_id行を先に入れる。同時実行でユニーク制約に当たったら
		//この時点でトランザクションごと巻き戻るので、カウンタは増えない。
		if err := r.Vouchers().CreateOrderVoucher(ctx, model.OrderVoucher{
			OrderID:        orderID,
			VoucherID:      voucherID,
			DiscountAmount: discountAmount,
		}); err != nil {
			return err
		}

		v, err := r.Vouchers().FindByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		v.UsedCount++
		if err := r.Vouchers().Update(ctx, v); err != nil {
			return err
		}

		now := time.Now()
		usage, found, err := r.Vouchers().FindUsage(ctx, userID, voucherID)
		if err != nil {
			return err
		}
		if found {
			usage.UsedCount++
			usage.LastUsedAt = now
			return r.Vouchers().UpdateUsage(ctx, usage)
		}
		return r.Vouchers().CreateUsage(ctx, model.UserVoucherUsage{
			UserID:      userID,
			VoucherID:   voucherID,
			UsedCount:   1,
			FirstUsedAt: now,
			LastUsedAt:  now,
		})
	})
	if errors.Is(err, repo.ErrDuplicate) {
		//負けた側。相手が消費を確定させているので成功扱い。
		return nil
	}
	return err
}

// Release はキャンセル時の巻き戻し。カウンタは0未満にせず、
// 0を下回りそうなら不整合としてログに残す。
func (s *VoucherService) Release(ctx context.Context, voucherID int64, userID int64) error {
	return s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Vouchers().FindByIDForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if v.UsedCount > 0 {
			v.UsedCount--
			if err := r.Vouchers().Update(ctx, v); err != nil {
				return err
			}
		} else {
			logger.Error("voucher release would drive used_count negative",
				"voucher_id", voucherID, "err", ErrInconsistency)
		}

		usage, found, err := r.Vouchers().FindUsage(ctx, userID, voucherID)
		if err != nil {
			return err
		}
		if found && usage.UsedCount > 0 {
			usage.UsedCount--
			if err := r.Vouchers().UpdateUsage(ctx, usage); err != nil {
				return err
			}
		} else {
			logger.Error("voucher release found no user usage to decrement",
				"voucher_id", voucherID, "user_id", userID, "err", ErrInconsistency)
		}

		return nil
	})
}
