package models

import "time"

// Table -> meja fisik. Status occupied hanya jika ada tepat satu order
// yang belum terminated menunjuk ke meja ini.
type Table struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TableNumber string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"table_number"`
	Capacity    int         `gorm:"not null;default:4" json:"capacity"`
	Status      TableStatus `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}
