package models

import "time"

// MaxItemQuantity -> batas quantity per baris item maupun add-on.
// Melewati batas ini ditolak dengan LimitExceededError, bukan di-clamp
// diam-diam.
const MaxItemQuantity = 5

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Order disembunyikan dari JSON untuk menghindari nesting rekursif
	Order     Order      `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID    uint       `gorm:"not null" json:"menu_id"`
	Menu      Menu       `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	Price     float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	Notes     string     `gorm:"type:text" json:"notes"`
	Status    ItemStatus `gorm:"type:varchar(20);not null;default:'confirming'" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
