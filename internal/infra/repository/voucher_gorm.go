package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoucherGormRepository struct {
	db *gorm.DB
}

func NewVoucherGormRepository(db *gorm.DB) *VoucherGormRepository {
	return &VoucherGormRepository{db: db}
}

func (r *VoucherGormRepository) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	var v model.Voucher
	//コードは大文字で保存している
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) FindByID(ctx context.Context, voucherID int64) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).Where("id = ?", voucherID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) FindByIDForUpdate(ctx context.Context, voucherID int64) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", voucherID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Voucher{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Voucher{}, err
	}
	return v, nil
}

func (r *VoucherGormRepository) Update(ctx context.Context, voucher model.Voucher) error {
	res := r.db.WithContext(ctx).Save(&voucher)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *VoucherGormRepository) FindUsage(ctx context.Context, userID int64, voucherID int64) (model.UserVoucherUsage, bool, error) {
	var u model.UserVoucherUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UserVoucherUsage{}, false, nil
	}
	if err != nil {
		return model.UserVoucherUsage{}, false, err
	}
	return u, true, nil
}

func (r *VoucherGormRepository) CreateUsage(ctx context.Context, usage model.UserVoucherUsage) error {
	if err := r.db.WithContext(ctx).Create(&usage).Error; err != nil {
		return err
	}
	return nil
}

func (r *VoucherGormRepository) UpdateUsage(ctx context.Context, usage model.UserVoucherUsage) error {
	res := r.db.WithContext(ctx).Save(&usage)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *VoucherGormRepository) FindOrderVoucher(ctx context.Context, orderID int64) (model.OrderVoucher, bool, error) {
	var ov model.OrderVoucher
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&ov).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.OrderVoucher{}, false, nil
	}
	if err != nil {
		return model.OrderVoucher{}, false, err
	}
	return ov, true, nil
}

func (r *VoucherGormRepository) CreateOrderVoucher(ctx context.Context, ov model.OrderVoucher) error {
	if err := r.db.WithContext(ctx).Create(&ov).Error; err != nil {
		//order_idユニーク制約に当たったら既に消費済み（同時実行時の冪等化）
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repo.ErrDuplicate
		}
		return err
	}
	return nil
}
