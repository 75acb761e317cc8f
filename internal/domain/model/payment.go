package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPayOS        PaymentMethod = "payos"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// 前払いが必要な決済方法か（codだけ後払い）
func (m PaymentMethod) RequiresPrepayment() bool {
	return m != PaymentMethodCOD
}

type Payment struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;uniqueIndex" json:"order_id"`

	Method PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	// 決済プロバイダ側の相関ID（数値のorderCode）と決済リンク
	ProviderOrderCode     *int64 `gorm:"uniqueIndex" json:"provider_order_code,omitempty"`
	CheckoutURL           string `gorm:"type:varchar(512)" json:"checkout_url"`
	ProviderTransactionID string `gorm:"type:varchar(100)" json:"provider_transaction_id"`

	// 決済リンクの有効期限。期限切れ掃除ジョブがここを見る。
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	PaidAt   *time.Time `json:"paid_at,omitempty"`
	FailedAt *time.Time `json:"failed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
