package usecase

import (
	"context"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// StockLedger は在庫を変更できる唯一の入口。
// 呼び出し元のトランザクション内で、variant行をロックしてから
// カウンタ更新と台帳追記を同時に行う。

type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

type AdjustStockInput struct {
	VariantID     int64
	Delta         int64 // 負なら出庫、正なら入庫
	ActionType    model.StockActionType
	Reason        string
	ReferenceID   *int64
	ReferenceType string
}

type AdjustStockResult struct {
	Before int64
	After  int64
}

func (l *StockLedger) Adjust(ctx context.Context, r repo.TxRepos, in AdjustStockInput) (AdjustStockResult, error) {
	if in.Delta == 0 {
		return AdjustStockResult{}, NewHTTPError(http.StatusBadRequest, "quantity change must be non-zero")
	}

	//行ロックを取ってから現在値を読む（同時更新のlost update防止）
	v, err := r.Variants().FindByIDForUpdate(ctx, in.VariantID)
	if err == repo.ErrNotFound {
		return AdjustStockResult{}, NewHTTPError(http.StatusNotFound, "variant not found")
	}
	if err != nil {
		return AdjustStockResult{}, err
	}

	before := v.StockQuantity
	after := before + in.Delta

	if after < 0 {
		return AdjustStockResult{}, fmt.Errorf("%w: variant %d has %d, requested %d",
			ErrInsufficientStock, in.VariantID, before, -in.Delta)
	}

	if err := r.Variants().UpdateStockQuantity(ctx, in.VariantID, after); err != nil {
		return AdjustStockResult{}, err
	}

	//カウンタ更新と同じトランザクションで台帳に1行追記
	entry := model.StockHistory{
		VariantID:      in.VariantID,
		ActionType:     in.ActionType,
		QuantityBefore: before,
		QuantityChange: in.Delta,
		QuantityAfter:  after,
		ReferenceID:    in.ReferenceID,
		ReferenceType:  in.ReferenceType,
		Reason:         in.Reason,
	}
	if err := r.StockHistory().Create(ctx, entry); err != nil {
		return AdjustStockResult{}, err
	}

	return AdjustStockResult{Before: before, After: after}, nil
}
