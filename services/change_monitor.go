package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/kds"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// ChangeMonitor mem-poll baris db_changes yang belum diproses dan
// menyiarkannya lewat hub. Observer (customer, dapur, konsol meja)
// konvergen ke state yang sama tanpa polling HTTP sendiri-sendiri.
// Delivery at-least-once: event yang terkirim dua kali tidak berbahaya
// karena klien refetch, bukan apply delta buta.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()
	if tx.Error != nil {
		return
	}

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "orders":
			cm.processOrderChange(change)
		case "order_items":
			cm.processItemChange(change)
		case "order_addons":
			cm.processAddonChange(change)
		case "qr_codes":
			cm.processTokenChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("Error committing change batch: %v", err)
		return
	}

	if len(changes) > 0 {
		utils.InfoLogger.Printf("Broadcasted %d row changes", len(changes))
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	if change.ActionType == models.ActionDelete {
		kds.BroadcastTableDelete(uint(change.RecordID))
		return
	}

	var table models.Table
	if err := cm.DB.First(&table, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching table %d: %v", change.RecordID, err)
		return
	}
	if change.ActionType == models.ActionInsert {
		kds.BroadcastTableCreate(table)
		return
	}
	kds.BroadcastTableUpdate(table)
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order
	if err := cm.DB.First(&order, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order %d: %v", change.RecordID, err)
		return
	}

	switch {
	case change.ActionType == models.ActionInsert:
		kds.BroadcastSessionOpen(order)
	case order.Status.IsTerminated():
		kds.BroadcastSessionClosed(order)
		// sesi selesai mengubah angka revenue di dashboard admin
		kds.BroadcastMessage(kds.Message{Event: kds.EventDashboardUpdate})
	default:
		kds.BroadcastSessionUpdate(order)
	}
}

func (cm *ChangeMonitor) processItemChange(change models.DBChange) {
	if change.ActionType == models.ActionDelete {
		kds.BroadcastItemDelete(uint(change.ParentID), uint(change.RecordID))
		return
	}

	var item models.OrderItem
	if err := cm.DB.Preload("Menu").First(&item, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order item %d: %v", change.RecordID, err)
		return
	}
	kds.BroadcastItemUpdate(item)
}

func (cm *ChangeMonitor) processAddonChange(change models.DBChange) {
	if change.ActionType == models.ActionDelete {
		kds.BroadcastAddonDelete(uint(change.ParentID), uint(change.RecordID))
		return
	}

	var addon models.OrderAddon
	if err := cm.DB.Preload("Addon").First(&addon, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order addon %d: %v", change.RecordID, err)
		return
	}
	kds.BroadcastAddonUpdate(addon)
}

func (cm *ChangeMonitor) processTokenChange(change models.DBChange) {
	var qr models.QRCode
	if err := cm.DB.First(&qr, change.RecordID).Error; err != nil {
		return
	}
	if qr.ExpiredAt != nil {
		kds.BroadcastTokenExpired(qr)
	}
}
