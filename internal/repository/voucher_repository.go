package repository

import (
	"context"

	"app/internal/domain/model"
)

type VoucherRepository interface {
	FindByCode(ctx context.Context, code string) (model.Voucher, error)
	FindByID(ctx context.Context, voucherID int64) (model.Voucher, error)

	// Consume/Releaseはカウンタ読み書きの間ロックを持つ
	FindByIDForUpdate(ctx context.Context, voucherID int64) (model.Voucher, error)
	Update(ctx context.Context, voucher model.Voucher) error

	FindUsage(ctx context.Context, userID int64, voucherID int64) (model.UserVoucherUsage, bool, error)
	CreateUsage(ctx context.Context, usage model.UserVoucherUsage) error
	UpdateUsage(ctx context.Context, usage model.UserVoucherUsage) error

	// 注文との対応（order_idユニーク。Consumeの冪等キー）
	FindOrderVoucher(ctx context.Context, orderID int64) (model.OrderVoucher, bool, error)
	CreateOrderVoucher(ctx context.Context, ov model.OrderVoucher) error
}
