package repository

import (
	"context"

	"app/internal/domain/model"
)

type VariantRepository interface {
	FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error)

	// SELECT ... FOR UPDATE。StockLedgerはこれで行ロックを取ってから在庫を読む。
	FindByIDForUpdate(ctx context.Context, variantID int64) (model.ProductVariant, error)

	UpdateStockQuantity(ctx context.Context, variantID int64, quantity int64) error

	// 在庫僅少の一覧（閾値未満）
	ListLowStock(ctx context.Context, threshold int64, page int, limit int) ([]model.ProductVariant, int64, error)
}
