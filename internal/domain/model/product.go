package model

import "time"

type Product struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	// 販売数カウンタ。deliveredへの最初の遷移でだけ増える。
	Sold int64 `gorm:"not null;default:0" json:"sold"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
