package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/kds"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

func setupMonitorTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Table{}, &models.MenuCategory{}, &models.Menu{},
		&models.Addon{}, &models.Package{}, &models.Order{},
		&models.OrderItem{}, &models.OrderAddon{}, &models.QRCode{},
		&models.DBChange{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func drainUntil(t *testing.T, ch <-chan kds.Message, event string) kds.Message {
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if msg.Event == event {
				return msg
			}
		case <-deadline:
			t.Fatalf("did not receive %s event", event)
			return kds.Message{}
		}
	}
}

func TestChangeMonitorBroadcastsSessionLifecycle(t *testing.T) {
	db := setupMonitorTestDB(t)

	table := models.Table{TableNumber: "M1", Capacity: 4, Status: models.TableAvailable}
	db.Create(&table)
	pkg := models.Package{Name: "Paket Monitor", Price: 50000, MaxCustomers: 4}
	db.Create(&pkg)

	ch, cancel := kds.Subscribe(kds.Filter{
		Events: []string{kds.EventSessionOpen, kds.EventSessionClosed},
	})
	defer cancel()

	monitor := NewChangeMonitor(db)
	sm := NewSessionManager(db)

	result, err := sm.Open(table.ID, pkg.ID, 2)
	assert.NoError(t, err)

	monitor.checkChanges()
	msg := drainUntil(t, ch, kds.EventSessionOpen)
	assert.Equal(t, result.Order.ID, msg.OrderID)
	assert.Equal(t, table.ID, msg.TableID)

	_, err = sm.Terminate(result.Order.ID, models.OrderCompleted)
	assert.NoError(t, err)

	monitor.checkChanges()
	msg = drainUntil(t, ch, kds.EventSessionClosed)
	assert.Equal(t, result.Order.ID, msg.OrderID)

	// semua change ditandai processed; putaran berikutnya sunyi
	var unprocessed int64
	db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&unprocessed)
	assert.Equal(t, int64(0), unprocessed)
}

func TestChangeMonitorDeleteCarriesSessionID(t *testing.T) {
	db := setupMonitorTestDB(t)

	table := models.Table{TableNumber: "M2", Capacity: 4, Status: models.TableAvailable}
	db.Create(&table)
	pkg := models.Package{Name: "Paket Monitor 2", Price: 50000, MaxCustomers: 4}
	db.Create(&pkg)
	category := models.MenuCategory{Name: "Grill"}
	db.Create(&category)
	menu := models.Menu{CategoryID: category.ID, Name: "Beef", Stock: 10}
	db.Create(&menu)

	sm := NewSessionManager(db)
	result, err := sm.Open(table.ID, pkg.ID, 2)
	assert.NoError(t, err)

	ledger := NewOrderLedger(db)
	item, err := ledger.AddOrUpdateItem(result.Order.ID, menu.ID, 0)
	assert.NoError(t, err)

	// filter per-order harus tetap kena meski record sudah terhapus
	ch, cancel := kds.Subscribe(kds.Filter{
		OrderID: result.Order.ID,
		Events:  []string{kds.EventItemDelete},
	})
	defer cancel()

	assert.NoError(t, ledger.Remove(item.ID))

	monitor := NewChangeMonitor(db)
	monitor.checkChanges()

	msg := drainUntil(t, ch, kds.EventItemDelete)
	assert.Equal(t, result.Order.ID, msg.OrderID)
}

func TestChangeMonitorStartStop(t *testing.T) {
	db := setupMonitorTestDB(t)

	monitor := NewChangeMonitor(db)
	monitor.Interval = 10 * time.Millisecond
	monitor.Start()

	table := models.Table{TableNumber: "M3", Capacity: 2, Status: models.TableAvailable}
	db.Create(&table)
	db.Create(&models.DBChange{TableName: "tables", RecordID: int64(table.ID), ActionType: models.ActionInsert, ChangedAt: time.Now()})

	assert.Eventually(t, func() bool {
		var unprocessed int64
		db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&unprocessed)
		return unprocessed == 0
	}, 2*time.Second, 20*time.Millisecond)

	monitor.Stop()
}
