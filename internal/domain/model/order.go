package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	// 表示用の注文コード（日付＋当日連番。例: ORD20260828-0007）
	OrderCode string `gorm:"type:varchar(20);not null;uniqueIndex" json:"order_code"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 金額内訳（total = sub_total + shipping_fee - voucher_discount_amount）
	SubTotal              int64 `gorm:"not null" json:"sub_total"`
	ShippingFee           int64 `gorm:"not null" json:"shipping_fee"`
	VoucherDiscountAmount int64 `gorm:"not null;default:0" json:"voucher_discount_amount"`
	TotalAmount           int64 `gorm:"not null" json:"total_amount"`

	VoucherID *int64 `gorm:"index" json:"voucher_id,omitempty"`

	// 配送先スナップショット（作成時にコピー、以後は不変）
	ReceiverName          string `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone         string `gorm:"type:varchar(20);not null" json:"receiver_phone"`
	ReceiverEmail         string `gorm:"type:varchar(255)" json:"receiver_email"`
	ShippingProvince      string `gorm:"type:varchar(100)" json:"shipping_province"`
	ShippingWard          string `gorm:"type:varchar(100)" json:"shipping_ward"`
	ShippingDetailAddress string `gorm:"type:varchar(255)" json:"shipping_detail_address"`

	Note         string `gorm:"type:text" json:"note"`
	CancelReason string `gorm:"type:varchar(255)" json:"cancel_reason"`

	// ステータス遷移のタイムスタンプ（それぞれ1回だけ刻む）
	ProcessingAt *time.Time `json:"processing_at,omitempty"`
	ShippedAt    *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
