package model

import "time"

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// 仕入れの入荷伝票。completedへの遷移だけが在庫を増やす。

type PurchaseOrder struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	SupplierID  int64               `gorm:"not null;index" json:"supplier_id"`
	StaffID     int64               `gorm:"not null" json:"staff_id"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount int64               `gorm:"not null" json:"total_amount"`
	Note        string              `gorm:"type:text" json:"note"`

	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseOrderID int64 `gorm:"not null;index" json:"purchase_order_id"`
	VariantID       int64 `gorm:"not null;index" json:"variant_id"`
	Quantity        int64 `gorm:"not null" json:"quantity"`
	UnitCost        int64 `gorm:"not null" json:"unit_cost"`
	TotalCost       int64 `gorm:"not null" json:"total_cost"`
}
