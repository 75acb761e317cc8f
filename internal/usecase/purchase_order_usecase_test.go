package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPurchaseOrderFixture() (*TxManagerMock, *PurchaseOrderRepoMock, *VariantRepoMock, *StockHistoryRepoMock, *usecase.PurchaseOrderUsecase) {
	tx := new(TxManagerMock)
	pos := new(PurchaseOrderRepoMock)
	variants := new(VariantRepoMock)
	history := new(StockHistoryRepoMock)

	tx.Repos = &TxReposMock{
		purchaseOrders: pos,
		variants:       variants,
		stockHistory:   history,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	return tx, pos, variants, history, usecase.NewPurchaseOrderUsecase(tx, usecase.NewStockLedger())
}

func TestPurchaseOrderUsecase_Create_EmptyItems(t *testing.T) {
	_, _, _, _, uc := newPurchaseOrderFixture()

	_, err := uc.Create(context.Background(), usecase.CreatePurchaseOrderInput{SupplierID: 1, StaffID: 1})
	assertErrContains(t, err, "items must not be empty")
}

func TestPurchaseOrderUsecase_Create_Success_SumsTotal(t *testing.T) {
	_, pos, _, _, uc := newPurchaseOrderFixture()

	pos.On("Create", mock.Anything, mock.MatchedBy(func(po model.PurchaseOrder) bool {
		// 10*5000 + 4*20000 = 130000
		return po.Status == model.PurchaseOrderStatusPending && po.TotalAmount == 130000
	})).Return(int64(9), nil)
	pos.On("CreateItems", mock.Anything, int64(9), mock.MatchedBy(func(items []model.PurchaseOrderItem) bool {
		return len(items) == 2 && items[0].TotalCost == 50000 && items[1].TotalCost == 80000
	})).Return(nil)

	out, err := uc.Create(context.Background(), usecase.CreatePurchaseOrderInput{
		SupplierID: 1,
		StaffID:    2,
		Items: []usecase.PurchaseOrderItemInput{
			{VariantID: 1, Quantity: 10, UnitCost: 5000},
			{VariantID: 2, Quantity: 4, UnitCost: 20000},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, int64(130000), out.TotalAmount)

	pos.AssertExpectations(t)
}

func TestPurchaseOrderUsecase_Complete_RestocksEachItem(t *testing.T) {
	_, pos, variants, history, uc := newPurchaseOrderFixture()

	pos.On("FindByIDForUpdate", mock.Anything, int64(9)).Return(model.PurchaseOrder{ID: 9, Status: model.PurchaseOrderStatusPending}, nil)
	pos.On("ListItems", mock.Anything, int64(9)).Return([]model.PurchaseOrderItem{
		{PurchaseOrderID: 9, VariantID: 1, Quantity: 10},
		{PurchaseOrderID: 9, VariantID: 2, Quantity: 4},
	}, nil)

	variants.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.ProductVariant{ID: 1, StockQuantity: 0}, nil)
	variants.On("UpdateStockQuantity", mock.Anything, int64(1), int64(10)).Return(nil)
	variants.On("FindByIDForUpdate", mock.Anything, int64(2)).Return(model.ProductVariant{ID: 2, StockQuantity: 6}, nil)
	variants.On("UpdateStockQuantity", mock.Anything, int64(2), int64(10)).Return(nil)
	history.On("Create", mock.Anything, mock.MatchedBy(func(e model.StockHistory) bool {
		return e.ActionType == model.StockActionRestock && e.ReferenceType == "purchase_order"
	})).Return(nil).Times(2)

	pos.On("Update", mock.Anything, mock.MatchedBy(func(po model.PurchaseOrder) bool {
		return po.Status == model.PurchaseOrderStatusCompleted && po.CompletedAt != nil
	})).Return(nil)

	err := uc.Complete(context.Background(), 9)
	assert.NoError(t, err)

	pos.AssertExpectations(t)
	variants.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestPurchaseOrderUsecase_Complete_AlreadyCompleted(t *testing.T) {
	_, pos, variants, _, uc := newPurchaseOrderFixture()

	pos.On("FindByIDForUpdate", mock.Anything, int64(9)).Return(model.PurchaseOrder{ID: 9, Status: model.PurchaseOrderStatusCompleted}, nil)

	err := uc.Complete(context.Background(), 9)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	//二度目の完了で在庫を二重計上しない
	variants.AssertNotCalled(t, "UpdateStockQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseOrderUsecase_Complete_NotFound(t *testing.T) {
	_, pos, _, _, uc := newPurchaseOrderFixture()

	pos.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.PurchaseOrder{}, repo.ErrNotFound)

	err := uc.Complete(context.Background(), 99)
	assertErrContains(t, err, "not found")
}

func TestPurchaseOrderUsecase_Cancel_PendingOnly(t *testing.T) {
	_, pos, _, _, uc := newPurchaseOrderFixture()

	pos.On("FindByIDForUpdate", mock.Anything, int64(9)).Return(model.PurchaseOrder{ID: 9, Status: model.PurchaseOrderStatusCompleted}, nil)

	err := uc.Cancel(context.Background(), 9)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

func TestPurchaseOrderUsecase_Cancel_Success(t *testing.T) {
	_, pos, _, _, uc := newPurchaseOrderFixture()

	pos.On("FindByIDForUpdate", mock.Anything, int64(9)).Return(model.PurchaseOrder{ID: 9, Status: model.PurchaseOrderStatusPending}, nil)
	pos.On("Update", mock.Anything, mock.MatchedBy(func(po model.PurchaseOrder) bool {
		return po.Status == model.PurchaseOrderStatusCancelled
	})).Return(nil)

	err := uc.Cancel(context.Background(), 9)
	assert.NoError(t, err)

	pos.AssertExpectations(t)
}
