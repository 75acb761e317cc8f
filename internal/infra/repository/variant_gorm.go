package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

func (r *VariantGormRepository) FindByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Where("id = ?", variantID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

// SELECT ... FOR UPDATE。同じvariantへの同時更新をここで直列化する。
func (r *VariantGormRepository) FindByIDForUpdate(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", variantID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

func (r *VariantGormRepository) UpdateStockQuantity(ctx context.Context, variantID int64, quantity int64) error {
	res := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", quantity)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *VariantGormRepository) ListLowStock(ctx context.Context, threshold int64, page int, limit int) ([]model.ProductVariant, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("stock_quantity < ?", threshold)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.ProductVariant{}, 0, err
	}

	var items []model.ProductVariant
	offset := (page - 1) * limit
	if err := q.Order("stock_quantity asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.ProductVariant{}, 0, err
	}

	return items, total, nil
}
