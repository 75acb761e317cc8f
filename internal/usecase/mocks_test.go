package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders         repo.OrderRepository
	orderItems     repo.OrderItemRepository
	payments       repo.PaymentRepository
	variants       repo.VariantRepository
	stockHistory   repo.StockHistoryRepository
	vouchers       repo.VoucherRepository
	products       repo.ProductRepository
	purchaseOrders repo.PurchaseOrderRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository         { return r.orderItems }
func (r *TxReposMock) Payments() repo.PaymentRepository             { return r.payments }
func (r *TxReposMock) Variants() repo.VariantRepository             { return r.variants }
func (r *TxReposMock) StockHistory() repo.StockHistoryRepository    { return r.stockHistory }
func (r *TxReposMock) Vouchers() repo.VoucherRepository             { return r.vouchers }
func (r *TxReposMock) Products() repo.ProductRepository             { return r.products }
func (r *TxReposMock) PurchaseOrders() repo.PurchaseOrderRepository { return r.purchaseOrders }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) Update(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) CountCreatedBetween(ctx context.Context, from time.Time, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListExpiredPending(ctx context.Context, now time.Time) ([]model.Order, error) {
	args := m.Called(ctx, now)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type PaymentRepoMock struct{ mock.Mock }

func (m *PaymentRepoMock) Create(ctx context.Context, payment model.Payment) (int64, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) FindByOrderIDForUpdate(ctx context.Context, orderID int64) (model.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) FindByProviderOrderCode(ctx context.Context, orderCode int64) (model.Payment, error) {
	args := m.Called(ctx, orderCode)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepoMock) Update(ctx context.Context, payment model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepoMock) ListPendingWithProvider(ctx context.Context, now time.Time) ([]model.Payment, error) {
	args := m.Called(ctx, now)
	items, _ := args.Get(0).([]model.Payment)
	return items, args.Error(1)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) FindByIDForUpdate(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) UpdateStockQuantity(ctx context.Context, variantID int64, quantity int64) error {
	args := m.Called(ctx, variantID, quantity)
	return args.Error(0)
}

func (m *VariantRepoMock) ListLowStock(ctx context.Context, threshold int64, page int, limit int) ([]model.ProductVariant, int64, error) {
	args := m.Called(ctx, threshold, page, limit)
	vs, _ := args.Get(0).([]model.ProductVariant)
	return vs, args.Get(1).(int64), args.Error(2)
}

type StockHistoryRepoMock struct{ mock.Mock }

func (m *StockHistoryRepoMock) Create(ctx context.Context, entry model.StockHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *StockHistoryRepoMock) List(ctx context.Context, f repo.StockHistoryFilter) ([]model.StockHistory, int64, error) {
	args := m.Called(ctx, f)
	entries, _ := args.Get(0).([]model.StockHistory)
	return entries, args.Get(1).(int64), args.Error(2)
}

type VoucherRepoMock struct{ mock.Mock }

func (m *VoucherRepoMock) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) FindByID(ctx context.Context, voucherID int64) (model.Voucher, error) {
	args := m.Called(ctx, voucherID)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) FindByIDForUpdate(ctx context.Context, voucherID int64) (model.Voucher, error) {
	args := m.Called(ctx, voucherID)
	v, _ := args.Get(0).(model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepoMock) Update(ctx context.Context, voucher model.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *VoucherRepoMock) FindUsage(ctx context.Context, userID int64, voucherID int64) (model.UserVoucherUsage, bool, error) {
	args := m.Called(ctx, userID, voucherID)
	u, _ := args.Get(0).(model.UserVoucherUsage)
	return u, args.Bool(1), args.Error(2)
}

func (m *VoucherRepoMock) CreateUsage(ctx context.Context, usage model.UserVoucherUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *VoucherRepoMock) UpdateUsage(ctx context.Context, usage model.UserVoucherUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *VoucherRepoMock) FindOrderVoucher(ctx context.Context, orderID int64) (model.OrderVoucher, bool, error) {
	args := m.Called(ctx, orderID)
	ov, _ := args.Get(0).(model.OrderVoucher)
	return ov, args.Bool(1), args.Error(2)
}

func (m *VoucherRepoMock) CreateOrderVoucher(ctx context.Context, ov model.OrderVoucher) error {
	args := m.Called(ctx, ov)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) IncrementSold(ctx context.Context, productID int64, delta int64) error {
	args := m.Called(ctx, productID, delta)
	return args.Error(0)
}

type PurchaseOrderRepoMock struct{ mock.Mock }

func (m *PurchaseOrderRepoMock) Create(ctx context.Context, po model.PurchaseOrder) (int64, error) {
	args := m.Called(ctx, po)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PurchaseOrderRepoMock) CreateItems(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error {
	args := m.Called(ctx, poID, items)
	return args.Error(0)
}

func (m *PurchaseOrderRepoMock) FindByID(ctx context.Context, poID int64) (model.PurchaseOrder, error) {
	args := m.Called(ctx, poID)
	po, _ := args.Get(0).(model.PurchaseOrder)
	return po, args.Error(1)
}

func (m *PurchaseOrderRepoMock) FindByIDForUpdate(ctx context.Context, poID int64) (model.PurchaseOrder, error) {
	args := m.Called(ctx, poID)
	po, _ := args.Get(0).(model.PurchaseOrder)
	return po, args.Error(1)
}

func (m *PurchaseOrderRepoMock) ListItems(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	args := m.Called(ctx, poID)
	items, _ := args.Get(0).([]model.PurchaseOrderItem)
	return items, args.Error(1)
}

func (m *PurchaseOrderRepoMock) Update(ctx context.Context, po model.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *PurchaseOrderRepoMock) List(ctx context.Context, status string, page int, limit int) ([]model.PurchaseOrder, int64, error) {
	args := m.Called(ctx, status, page, limit)
	pos, _ := args.Get(0).([]model.PurchaseOrder)
	return pos, args.Get(1).(int64), args.Error(2)
}

// =====================
// Provider / Notifier mocks
// =====================

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCheckout(ctx context.Context, in usecase.CreateCheckoutInput) (usecase.CheckoutSession, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(usecase.CheckoutSession)
	return s, args.Error(1)
}

func (m *ProviderMock) GetStatus(ctx context.Context, orderCode int64) (usecase.ProviderPaymentInfo, error) {
	args := m.Called(ctx, orderCode)
	info, _ := args.Get(0).(usecase.ProviderPaymentInfo)
	return info, args.Error(1)
}

func (m *ProviderMock) Cancel(ctx context.Context, orderCode int64) error {
	args := m.Called(ctx, orderCode)
	return args.Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) NotifyOrderConfirmed(ctx context.Context, order usecase.OrderOutput) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
