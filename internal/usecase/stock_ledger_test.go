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

func TestStockLedger_Adjust_ZeroDelta(t *testing.T) {
	ledger := usecase.NewStockLedger()
	r := &TxReposMock{}

	_, err := ledger.Adjust(context.Background(), r, usecase.AdjustStockInput{
		VariantID:  1,
		Delta:      0,
		ActionType: model.StockActionAdjustment,
	})
	assertErrContains(t, err, "non-zero")
}

func TestStockLedger_Adjust_VariantNotFound(t *testing.T) {
	ctx := context.Background()

	variants := new(VariantRepoMock)
	variants.On("FindByIDForUpdate", mock.Anything, int64(99)).Return(model.ProductVariant{}, repo.ErrNotFound)

	ledger := usecase.NewStockLedger()
	r := &TxReposMock{variants: variants}

	_, err := ledger.Adjust(ctx, r, usecase.AdjustStockInput{
		VariantID:  99,
		Delta:      -1,
		ActionType: model.StockActionSale,
	})
	assertErrContains(t, err, "not found")

	variants.AssertExpectations(t)
}

func TestStockLedger_Adjust_InsufficientStock(t *testing.T) {
	ctx := context.Background()

	variants := new(VariantRepoMock)
	variants.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.ProductVariant{ID: 1, StockQuantity: 2}, nil)

	ledger := usecase.NewStockLedger()
	r := &TxReposMock{variants: variants}

	_, err := ledger.Adjust(ctx, r, usecase.AdjustStockInput{
		VariantID:  1,
		Delta:      -3,
		ActionType: model.StockActionSale,
	})
	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)

	//カウンタも台帳も触らない
	variants.AssertNotCalled(t, "UpdateStockQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockLedger_Adjust_Success_WritesCounterAndHistory(t *testing.T) {
	ctx := context.Background()

	variants := new(VariantRepoMock)
	history := new(StockHistoryRepoMock)

	variants.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.ProductVariant{ID: 1, StockQuantity: 10}, nil)
	variants.On("UpdateStockQuantity", mock.Anything, int64(1), int64(7)).Return(nil)
	history.On("Create", mock.Anything, mock.MatchedBy(func(e model.StockHistory) bool {
		return e.VariantID == 1 &&
			e.ActionType == model.StockActionSale &&
			e.QuantityBefore == 10 &&
			e.QuantityChange == -3 &&
			e.QuantityAfter == 7
	})).Return(nil)

	ledger := usecase.NewStockLedger()
	r := &TxReposMock{variants: variants, stockHistory: history}

	res, err := ledger.Adjust(ctx, r, usecase.AdjustStockInput{
		VariantID:  1,
		Delta:      -3,
		ActionType: model.StockActionSale,
		Reason:     "order ORD20260828-0001",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), res.Before)
	assert.Equal(t, int64(7), res.After)

	variants.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestStockLedger_Adjust_RestockToExactZeroBoundary(t *testing.T) {
	ctx := context.Background()

	variants := new(VariantRepoMock)
	history := new(StockHistoryRepoMock)

	//ちょうど0になる出庫は成功する
	variants.On("FindByIDForUpdate", mock.Anything, int64(2)).Return(model.ProductVariant{ID: 2, StockQuantity: 5}, nil)
	variants.On("UpdateStockQuantity", mock.Anything, int64(2), int64(0)).Return(nil)
	history.On("Create", mock.Anything, mock.Anything).Return(nil)

	ledger := usecase.NewStockLedger()
	r := &TxReposMock{variants: variants, stockHistory: history}

	res, err := ledger.Adjust(ctx, r, usecase.AdjustStockInput{
		VariantID:  2,
		Delta:      -5,
		ActionType: model.StockActionSale,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), res.After)
}
