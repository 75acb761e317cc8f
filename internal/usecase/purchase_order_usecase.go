package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type PurchaseOrderUsecase struct {
	tx     repo.TransactionManager
	ledger *StockLedger
}

func NewPurchaseOrderUsecase(tx repo.TransactionManager, ledger *StockLedger) *PurchaseOrderUsecase {
	return &PurchaseOrderUsecase{tx: tx, ledger: ledger}
}

type PurchaseOrderItemInput struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
	UnitCost  int64 `json:"unit_cost"`
}

type CreatePurchaseOrderInput struct {
	SupplierID   int64
	StaffID      int64
	Note         string
	ExpectedDate *time.Time
	Items        []PurchaseOrderItemInput
}

type PurchaseOrderOutput struct {
	ID          int64      `json:"id"`
	SupplierID  int64      `json:"supplier_id"`
	Status      string     `json:"status"`
	TotalAmount int64      `json:"total_amount"`
	Note        string     `json:"note"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u *PurchaseOrderUsecase) Create(ctx context.Context, in CreatePurchaseOrderInput) (PurchaseOrderOutput, error) {
	if in.SupplierID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid supplier_id")
	}
	if len(in.Items) == 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}
	for _, it := range in.Items {
		if it.VariantID <= 0 || it.Quantity <= 0 || it.UnitCost < 0 {
			return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	var out PurchaseOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var total int64
		items := make([]model.PurchaseOrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			cost := it.Quantity * it.UnitCost
			total += cost
			items = append(items, model.PurchaseOrderItem{
				VariantID: it.VariantID,
				Quantity:  it.Quantity,
				UnitCost:  it.UnitCost,
				TotalCost: cost,
			})
		}

		poID, err := r.PurchaseOrders().Create(ctx, model.PurchaseOrder{
			SupplierID:   in.SupplierID,
			StaffID:      in.StaffID,
			Status:       model.PurchaseOrderStatusPending,
			TotalAmount:  total,
			Note:         in.Note,
			ExpectedDate: in.ExpectedDate,
		})
		if err != nil {
			return err
		}
		if err := r.PurchaseOrders().CreateItems(ctx, poID, items); err != nil {
			return err
		}

		out = PurchaseOrderOutput{
			ID:          poID,
			SupplierID:  in.SupplierID,
			Status:      string(model.PurchaseOrderStatusPending),
			TotalAmount: total,
			Note:        in.Note,
			CreatedAt:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

// Complete はpendingの入荷伝票を完了にし、明細ぶんの在庫を台帳経由で増やす。
// 在庫を動かすのはこの遷移だけ。
func (u *PurchaseOrderUsecase) Complete(ctx context.Context, poID int64) error {
	if poID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByIDForUpdate(ctx, poID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if po.Status != model.PurchaseOrderStatusPending {
			return fmt.Errorf("%w: %s -> completed", ErrInvalidTransition, po.Status)
		}

		items, err := r.PurchaseOrders().ListItems(ctx, poID)
		if err != nil {
			return err
		}
		for _, it := range items {
			refID := poID
			if _, err := u.ledger.Adjust(ctx, r, AdjustStockInput{
				VariantID:     it.VariantID,
				Delta:         it.Quantity,
				ActionType:    model.StockActionRestock,
				Reason:        fmt.Sprintf("purchase order #%d", poID),
				ReferenceID:   &refID,
				ReferenceType: "purchase_order",
			}); err != nil {
				return err
			}
		}

		now := time.Now()
		po.Status = model.PurchaseOrderStatusCompleted
		if po.CompletedAt == nil {
			po.CompletedAt = &now
		}
		return r.PurchaseOrders().Update(ctx, po)
	})
}

// Cancel はpendingの伝票だけ取り消せる。在庫には触らない。
func (u *PurchaseOrderUsecase) Cancel(ctx context.Context, poID int64) error {
	if poID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByIDForUpdate(ctx, poID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		if po.Status != model.PurchaseOrderStatusPending {
			return fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, po.Status)
		}

		po.Status = model.PurchaseOrderStatusCancelled
		return r.PurchaseOrders().Update(ctx, po)
	})
}

func (u *PurchaseOrderUsecase) Get(ctx context.Context, poID int64) (PurchaseOrderOutput, error) {
	if poID <= 0 {
		return PurchaseOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out PurchaseOrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		po, err := r.PurchaseOrders().FindByID(ctx, poID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return err
		}
		out = toPurchaseOrderOutput(po)
		return nil
	})
	if err != nil {
		return PurchaseOrderOutput{}, err
	}
	return out, nil
}

func (u *PurchaseOrderUsecase) List(ctx context.Context, status string, page int, limit int) ([]PurchaseOrderOutput, int64, error) {
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []PurchaseOrderOutput
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		pos, n, err := r.PurchaseOrders().List(ctx, status, page, limit)
		if err != nil {
			return err
		}
		total = n
		outs = make([]PurchaseOrderOutput, 0, len(pos))
		for _, po := range pos {
			outs = append(outs, toPurchaseOrderOutput(po))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

func toPurchaseOrderOutput(po model.PurchaseOrder) PurchaseOrderOutput {
	return PurchaseOrderOutput{
		ID:          po.ID,
		SupplierID:  po.SupplierID,
		Status:      string(po.Status),
		TotalAmount: po.TotalAmount,
		Note:        po.Note,
		CompletedAt: po.CompletedAt,
		CreatedAt:   po.CreatedAt,
	}
}
