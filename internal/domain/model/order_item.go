package model

import "time"

// 注文明細。作成後は不変。

type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"not null;index:idx_order_variant,unique" json:"order_id"`
	VariantID int64 `gorm:"not null;index:idx_order_variant,unique" json:"variant_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	// 購入時点の単価スナップショット
	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	SubTotal  int64 `gorm:"not null" json:"sub_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
