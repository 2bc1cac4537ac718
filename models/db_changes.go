package models

import "time"

// DBChange -> baris change-capture yang dipoll oleh ChangeMonitor dan
// disiarkan ke semua observer. Ditulis dalam transaksi yang sama dengan
// mutasi yang dicatatnya.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ParentID   int64     `gorm:"not null;default:0"` // order pemilik untuk baris ledger; 0 jika tidak relevan
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"` // INSERT, UPDATE, DELETE
	ChangedAt  time.Time `gorm:"not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)
