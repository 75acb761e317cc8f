package model

import "time"

type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixedAmount  DiscountType = "fixed_amount"
	DiscountTypeFreeShipping DiscountType = "free_shipping"
)

type Voucher struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name string `gorm:"type:varchar(255)" json:"name"`

	DiscountType  DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue int64        `gorm:"not null" json:"discount_value"`

	MinOrderAmount int64 `gorm:"not null;default:0" json:"min_order_amount"`

	// percentageの割引上限。0は上限なし。
	MaxDiscountAmount int64 `gorm:"not null;default:0" json:"max_discount_amount"`

	// 全体の利用回数制限。0は無制限。
	UsageLimit int64 `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount  int64 `gorm:"not null;default:0" json:"used_count"`

	// 1ユーザーあたりの利用回数
	UserLimit int64 `gorm:"not null;default:1" json:"user_limit"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Active    bool      `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ユーザーごとの利用実績。初回利用時に作る。

type UserVoucherUsage struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index:idx_user_voucher,unique" json:"user_id"`
	VoucherID int64 `gorm:"not null;index:idx_user_voucher,unique" json:"voucher_id"`
	UsedCount int64 `gorm:"not null;default:0" json:"used_count"`

	FirstUsedAt time.Time `gorm:"not null" json:"first_used_at"`
	LastUsedAt  time.Time `gorm:"not null" json:"last_used_at"`
}

// 注文とバウチャーの対応。order_idがユニークなのでConsumeの冪等キーになる。

type OrderVoucher struct {
	ID             int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64 `gorm:"not null;uniqueIndex" json:"order_id"`
	VoucherID      int64 `gorm:"not null;index" json:"voucher_id"`
	DiscountAmount int64 `gorm:"not null" json:"discount_amount"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
