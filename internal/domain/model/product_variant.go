package model

import "time"

// 購入可能なSKU（商品×色×サイズ）。在庫カウンタはStockLedger経由でのみ変更する。

type ProductVariant struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	// 常に0以上
	StockQuantity int64 `gorm:"not null;default:0" json:"stock_quantity"`
	Price         int64 `gorm:"not null" json:"price"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
