package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment model.Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID int64) (model.Payment, error)
	FindByProviderOrderCode(ctx context.Context, orderCode int64) (model.Payment, error)
	Update(ctx context.Context, payment model.Payment) error

	// pendingかつプロバイダ相関IDあり、期限内（ポーリングジョブの対象）
	ListPendingWithProvider(ctx context.Context, now time.Time) ([]model.Payment, error)
}
