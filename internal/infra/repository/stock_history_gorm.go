package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StockHistoryGormRepository struct {
	db *gorm.DB
}

func NewStockHistoryGormRepository(db *gorm.DB) *StockHistoryGormRepository {
	return &StockHistoryGormRepository{db: db}
}

// 台帳への追記。UPDATE/DELETEは用意しない。
func (r *StockHistoryGormRepository) Create(ctx context.Context, entry model.StockHistory) error {
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}
	return nil
}

func (r *StockHistoryGormRepository) List(ctx context.Context, f repo.StockHistoryFilter) ([]model.StockHistory, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.StockHistory{})

	if f.VariantID != nil {
		q = q.Where("variant_id = ?", *f.VariantID)
	}
	if f.ActionType != "" {
		q = q.Where("action_type = ?", f.ActionType)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.StockHistory{}, 0, err
	}

	var items []model.StockHistory
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.StockHistory{}, 0, err
	}

	return items, total, nil
}
