package models

import "time"

// Package -> paket harga per-customer yang memberi hak atas daftar menu
// tertentu (atau semua menu jika Unlimited). Referensi paket di order
// boleh diganti ("upgrade") selama sesi masih open.
type Package struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	MaxCustomers int       `gorm:"not null;default:8" json:"max_customers"`
	Unlimited    bool      `gorm:"default:false" json:"unlimited"`
	Description  string    `gorm:"type:text" json:"description"`
	Menus        []Menu    `gorm:"many2many:package_menus" json:"menus,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
