package model

import "time"

type StockActionType string

const (
	StockActionSale           StockActionType = "sale"
	StockActionOrderCancelled StockActionType = "order_cancelled"
	StockActionRestock        StockActionType = "restock"
	StockActionAdjustment     StockActionType = "adjustment"
)

// 在庫変更の台帳。追記のみで、
// quantity_after = quantity_before + quantity_change が常に成り立つ。

type StockHistory struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID int64 `gorm:"not null;index" json:"variant_id"`

	ActionType StockActionType `gorm:"type:varchar(20);not null;index" json:"action_type"`

	QuantityBefore int64 `gorm:"not null" json:"quantity_before"`
	QuantityChange int64 `gorm:"not null" json:"quantity_change"`
	QuantityAfter  int64 `gorm:"not null" json:"quantity_after"`

	// 原因となった注文/入荷などへの参照
	ReferenceID   *int64 `gorm:"index" json:"reference_id,omitempty"`
	ReferenceType string `gorm:"type:varchar(30)" json:"reference_type"`
	Reason        string `gorm:"type:varchar(255)" json:"reason"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
