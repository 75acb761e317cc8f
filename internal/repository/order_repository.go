package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderListFilter struct {
	Page          int
	Limit         int
	UserID        *int64
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	// 行ロック付きで取得（キャンセルと掃除ジョブの競合対策）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)
	Update(ctx context.Context, order model.Order) error

	// 注文コードの当日連番用
	CountCreatedBetween(ctx context.Context, from time.Time, to time.Time) (int64, error)

	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	// pendingのまま決済期限が切れた注文（期限切れ掃除ジョブの対象）
	ListExpiredPending(ctx context.Context, now time.Time) ([]model.Order, error)
}
