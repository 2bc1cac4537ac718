package models

import "time"

// OrderAddon -> pilihan add-on berbayar di satu sesi. State machine-nya
// sama dengan OrderItem minus status cancelled, dan harganya ikut
// dihitung ke TotalPrice order.
type OrderAddon struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OrderID   uint       `gorm:"not null;index" json:"order_id"`
	Order     Order      `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AddonID   uint       `gorm:"not null" json:"addon_id"`
	Addon     Addon      `gorm:"foreignKey:AddonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"addon"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	Price     float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	Status    ItemStatus `gorm:"type:varchar(20);not null;default:'confirming'" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
