package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders         repo.OrderRepository
	orderItems     repo.OrderItemRepository
	payments       repo.PaymentRepository
	variants       repo.VariantRepository
	stockHistory   repo.StockHistoryRepository
	vouchers       repo.VoucherRepository
	products       repo.ProductRepository
	purchaseOrders repo.PurchaseOrderRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository         { return r.orderItems }
func (r *txReposGorm) Payments() repo.PaymentRepository             { return r.payments }
func (r *txReposGorm) Variants() repo.VariantRepository             { return r.variants }
func (r *txReposGorm) StockHistory() repo.StockHistoryRepository    { return r.stockHistory }
func (r *txReposGorm) Vouchers() repo.VoucherRepository             { return r.vouchers }
func (r *txReposGorm) Products() repo.ProductRepository             { return r.products }
func (r *txReposGorm) PurchaseOrders() repo.PurchaseOrderRepository { return r.purchaseOrders }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:         NewOrderGormRepository(tx),
			orderItems:     NewOrderItemGormRepository(tx),
			payments:       NewPaymentGormRepository(tx),
			variants:       NewVariantGormRepository(tx),
			stockHistory:   NewStockHistoryGormRepository(tx),
			vouchers:       NewVoucherGormRepository(tx),
			products:       NewProductGormRepository(tx),
			purchaseOrders: NewPurchaseOrderGormRepository(tx),
		}
		return fn(r)
	})
}
