package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderGormRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderGormRepository(db *gorm.DB) *PurchaseOrderGormRepository {
	return &PurchaseOrderGormRepository{db: db}
}

func (r *PurchaseOrderGormRepository) Create(ctx context.Context, po model.PurchaseOrder) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&po).Error; err != nil {
		return 0, err
	}
	return po.ID, nil
}

func (r *PurchaseOrderGormRepository) CreateItems(ctx context.Context, poID int64, items []model.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PurchaseOrderID = poID
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}

func (r *PurchaseOrderGormRepository) FindByID(ctx context.Context, poID int64) (model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).Where("id = ?", poID).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PurchaseOrder{}, err
	}
	return po, nil
}

func (r *PurchaseOrderGormRepository) FindByIDForUpdate(ctx context.Context, poID int64) (model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", poID).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PurchaseOrder{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PurchaseOrder{}, err
	}
	return po, nil
}

func (r *PurchaseOrderGormRepository) ListItems(ctx context.Context, poID int64) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	err := r.db.WithContext(ctx).Where("purchase_order_id = ?", poID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.PurchaseOrderItem{}, err
	}
	return items, nil
}

func (r *PurchaseOrderGormRepository) Update(ctx context.Context, po model.PurchaseOrder) error {
	res := r.db.WithContext(ctx).Save(&po)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PurchaseOrderGormRepository) List(ctx context.Context, status string, page int, limit int) ([]model.PurchaseOrder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}

	var items []model.PurchaseOrder
	offset := (page - 1) * limit
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.PurchaseOrder{}, 0, err
	}

	return items, total, nil
}
