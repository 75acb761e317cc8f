package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type StockHistoryFilter struct {
	Page       int
	Limit      int
	VariantID  *int64
	ActionType string
	From       *time.Time
	To         *time.Time
}

type StockHistoryRepository interface {
	// 台帳は追記のみ
	Create(ctx context.Context, entry model.StockHistory) error
	List(ctx context.Context, f StockHistoryFilter) ([]model.StockHistory, int64, error)
}
