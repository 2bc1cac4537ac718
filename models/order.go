package models

import "time"

// Order -> satu sesi pemesanan di satu meja, terikat ke paket dan jumlah
// customer. Maksimal satu order yang belum terminated per meja.
// TotalPrice bersifat prospektif selama sesi berjalan dan baru otoritatif
// setelah TerminatedAt terisi.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TableID       uint          `gorm:"not null;index" json:"table_id"`
	Table         Table         `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	PackageID     uint          `gorm:"not null" json:"package_id"`
	Package       Package       `gorm:"foreignKey:PackageID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"package"`
	CustomerCount int           `gorm:"not null" json:"customer_count"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalPrice    float64       `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_price"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
	TerminatedAt  *time.Time    `json:"terminated_at,omitempty"`
	OrderItems    []OrderItem   `gorm:"foreignKey:OrderID" json:"order_items,omitempty"`
	OrderAddons   []OrderAddon  `gorm:"foreignKey:OrderID" json:"order_addons,omitempty"`
}

func (o *Order) IsOpen() bool {
	return o.Status.IsOpen()
}
