package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Payments() PaymentRepository
	Variants() VariantRepository
	StockHistory() StockHistoryRepository
	Vouchers() VoucherRepository
	Products() ProductRepository
	PurchaseOrders() PurchaseOrderRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
