package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
)

// RecordChange menulis satu baris change-capture di transaksi yang sama
// dengan mutasi yang dicatatnya, sehingga observer tidak pernah melihat
// event tanpa mutasinya (atau sebaliknya) setelah commit.
func RecordChange(tx *gorm.DB, tableName string, recordID uint, action string) error {
	change := models.DBChange{
		TableName:  tableName,
		RecordID:   int64(recordID),
		ActionType: action,
		ChangedAt:  time.Now(),
	}
	return tx.Create(&change).Error
}

// RecordLedgerChange -> varian untuk baris order_items/order_addons yang
// membawa order pemiliknya, supaya event DELETE tetap bisa difilter per
// sesi walau barisnya sudah tidak bisa dimuat.
func RecordLedgerChange(tx *gorm.DB, tableName string, recordID, orderID uint, action string) error {
	change := models.DBChange{
		TableName:  tableName,
		RecordID:   int64(recordID),
		ParentID:   int64(orderID),
		ActionType: action,
		ChangedAt:  time.Now(),
	}
	return tx.Create(&change).Error
}
