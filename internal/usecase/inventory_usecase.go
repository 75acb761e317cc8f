package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type InventoryUsecase struct {
	tx     repo.TransactionManager
	ledger *StockLedger
}

func NewInventoryUsecase(tx repo.TransactionManager, ledger *StockLedger) *InventoryUsecase {
	return &InventoryUsecase{tx: tx, ledger: ledger}
}

type ManualAdjustInput struct {
	VariantID int64  `json:"variant_id"`
	Change    int64  `json:"change"`
	Reason    string `json:"reason"`
}

type ManualAdjustOutput struct {
	VariantID      int64 `json:"variant_id"`
	QuantityBefore int64 `json:"quantity_before"`
	QuantityChange int64 `json:"quantity_change"`
	QuantityAfter  int64 `json:"quantity_after"`
}

// AdjustStock は棚卸し等の手動補正。理由は必須。
func (u *InventoryUsecase) AdjustStock(ctx context.Context, in ManualAdjustInput) (ManualAdjustOutput, error) {
	if in.VariantID <= 0 {
		return ManualAdjustOutput{}, NewHTTPError(http.StatusBadRequest, "invalid variant_id")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ManualAdjustOutput{}, NewHTTPError(http.StatusBadRequest, "reason is required")
	}

	var out ManualAdjustOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res, err := u.ledger.Adjust(ctx, r, AdjustStockInput{
			VariantID:  in.VariantID,
			Delta:      in.Change,
			ActionType: model.StockActionAdjustment,
			Reason:     strings.TrimSpace(in.Reason),
		})
		if err != nil {
			return err
		}
		out = ManualAdjustOutput{
			VariantID:      in.VariantID,
			QuantityBefore: res.Before,
			QuantityChange: in.Change,
			QuantityAfter:  res.After,
		}
		return nil
	})
	if err != nil {
		return ManualAdjustOutput{}, err
	}
	return out, nil
}

func (u *InventoryUsecase) ListStockHistory(ctx context.Context, f repo.StockHistoryFilter) ([]model.StockHistory, int64, error) {
	if f.Page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var entries []model.StockHistory
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		entries, total, err = r.StockHistory().List(ctx, f)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (u *InventoryUsecase) ListLowStock(ctx context.Context, threshold int64, page int, limit int) ([]model.ProductVariant, int64, error) {
	if threshold < 0 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid threshold")
	}
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var variants []model.ProductVariant
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		variants, total, err = r.Variants().ListLowStock(ctx, threshold, page, limit)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return variants, total, nil
}
