package repository

import (
	"context"

	"app/internal/domain/model"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po model.PurchaseOrder) (int64, error)
	CreateItems(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error
	FindByID(ctx context.Context, poID int64) (model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, poID int64) (model.PurchaseOrder, error)
	ListItems(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error)
	Update(ctx context.Context, po model.PurchaseOrder) error
	List(ctx context.Context, status string, page int, limit int) ([]model.PurchaseOrder, int64, error)
}
