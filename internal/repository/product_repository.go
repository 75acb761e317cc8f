package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")

	// ユニーク制約違反（冪等な書き込みの検出に使う）
	ErrDuplicate = errors.New("duplicate")
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)

	// 販売数カウンタの増減（deltaは負も可）
	IncrementSold(ctx context.Context, productID int64, delta int64) error
}
