package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// setupSessionTestDB -> SQLite in-memory dengan nama unik per test
func setupSessionTestDB(t *testing.T) *gorm.DB {
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

// seedSessionFixtures -> satu meja, satu paket, satu menu, satu add-on
func seedSessionFixtures(db *gorm.DB) (models.Table, models.Package, models.Menu, models.Addon) {
	table := models.Table{TableNumber: "A1", Capacity: 6, Status: models.TableAvailable}
	db.Create(&table)

	pkg := models.Package{Name: "Paket Reguler", Price: 99000, MaxCustomers: 8}
	db.Create(&pkg)

	category := models.MenuCategory{Name: "Grill"}
	db.Create(&category)
	menu := models.Menu{CategoryID: category.ID, Name: "Beef Slice", Price: 0, Stock: 100}
	db.Create(&menu)

	addon := models.Addon{Name: "Es Teh", Price: 8000, Stock: 100}
	db.Create(&addon)

	return table, pkg, menu, addon
}

func TestOpenSession(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, err := sm.Open(table.ID, pkg.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderActive, result.Order.Status)
	assert.Equal(t, models.PaymentUnpaid, result.Order.PaymentStatus)
	assert.Equal(t, 3*pkg.Price, result.Order.TotalPrice)
	assert.NotEmpty(t, result.QRCode.Code)
	assert.Nil(t, result.QRCode.ExpiredAt)

	var reloaded models.Table
	db.First(&reloaded, table.ID)
	assert.Equal(t, models.TableOccupied, reloaded.Status)
}

func TestOpenSessionValidation(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	_, err := sm.Open(table.ID, pkg.ID, 0)
	var precondition *utils.PreconditionError
	assert.ErrorAs(t, err, &precondition)

	// kapasitas meja 6, paket max 8: 7 orang gagal di meja
	_, err = sm.Open(table.ID, pkg.ID, 7)
	assert.ErrorAs(t, err, &precondition)

	// melebihi max paket
	_, err = sm.Open(table.ID, pkg.ID, 9)
	assert.ErrorAs(t, err, &precondition)

	var notFound *utils.NotFoundError
	_, err = sm.Open(999, pkg.ID, 2)
	assert.ErrorAs(t, err, &notFound)
	_, err = sm.Open(table.ID, 999, 2)
	assert.ErrorAs(t, err, &notFound)
}

func TestOpenSessionLosesRace(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	_, err := sm.Open(table.ID, pkg.ID, 2)
	assert.NoError(t, err)

	// meja sudah diklaim; pembuka kedua kalah compare-and-set
	_, err = sm.Open(table.ID, pkg.ID, 2)
	var conflict *utils.ConflictError
	assert.ErrorAs(t, err, &conflict)

	var sessions int64
	db.Model(&models.Order{}).Count(&sessions)
	assert.Equal(t, int64(1), sessions)
}

func TestTerminateSweepsAndReleases(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, menu, addon := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, err := sm.Open(table.ID, pkg.ID, 2)
	assert.NoError(t, err)
	orderID := result.Order.ID

	// satu baris per status; hanya preparing/served yang harus selamat
	statuses := []models.ItemStatus{
		models.ItemConfirming, models.ItemPending, models.ItemCancelled,
		models.ItemPreparing, models.ItemServed,
	}
	for _, st := range statuses {
		db.Create(&models.OrderItem{OrderID: orderID, MenuID: menu.ID, Quantity: 1, Status: st})
	}
	db.Create(&models.OrderAddon{OrderID: orderID, AddonID: addon.ID, Quantity: 2, Price: addon.Price, Status: models.ItemPending})
	db.Create(&models.OrderAddon{OrderID: orderID, AddonID: addon.ID, Quantity: 3, Price: addon.Price, Status: models.ItemServed})

	order, err := sm.Terminate(orderID, models.OrderCompleted)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.NotNil(t, order.TerminatedAt)

	var items []models.OrderItem
	db.Where("order_id = ?", orderID).Find(&items)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.Status.Historical())
	}

	var addons []models.OrderAddon
	db.Where("order_id = ?", orderID).Find(&addons)
	assert.Len(t, addons, 1)
	assert.Equal(t, models.ItemServed, addons[0].Status)

	// total dihitung ulang dari ledger yang tersisa
	assert.Equal(t, 2*pkg.Price+3*addon.Price, order.TotalPrice)

	var reloadedTable models.Table
	db.First(&reloadedTable, table.ID)
	assert.Equal(t, models.TableAvailable, reloadedTable.Status)

	var qr models.QRCode
	db.Where("order_id = ?", orderID).First(&qr)
	assert.NotNil(t, qr.ExpiredAt)
}

func TestTerminateIdempotent(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)

	first, err := sm.Terminate(result.Order.ID, models.OrderCompleted)
	assert.NoError(t, err)

	// klik ganda staff: panggilan kedua sukses tanpa efek
	second, err := sm.Terminate(result.Order.ID, models.OrderCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, second.Status)
	assert.Equal(t, first.TotalPrice, second.TotalPrice)
}

func TestTerminateInvalidOutcome(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)

	_, err := sm.Terminate(result.Order.ID, models.OrderActive)
	var invalid *utils.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestExpireCheckStates(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)

	state, qr, err := sm.ExpireCheck(result.QRCode.Code)
	assert.NoError(t, err)
	assert.Equal(t, TokenValid, state)
	assert.Equal(t, result.Order.ID, qr.OrderID)

	state, _, err = sm.ExpireCheck("bukan-kode-yang-pernah-ada")
	assert.NoError(t, err)
	assert.Equal(t, TokenInvalidNoSession, state)

	_, err = sm.Terminate(result.Order.ID, models.OrderCompleted)
	assert.NoError(t, err)

	// token sesi terminated di-stamp, jawabannya expired
	state, _, err = sm.ExpireCheck(result.QRCode.Code)
	assert.NoError(t, err)
	assert.Equal(t, TokenExpired, state)
}

func TestExpireCheckStampedFuture(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)

	past := time.Now().Add(-time.Minute)
	db.Model(&models.QRCode{}).Where("id = ?", result.QRCode.ID).Update("expired_at", past)

	state, _, err := sm.ExpireCheck(result.QRCode.Code)
	assert.NoError(t, err)
	assert.Equal(t, TokenExpired, state)

	future := time.Now().Add(time.Hour)
	db.Model(&models.QRCode{}).Where("id = ?", result.QRCode.ID).Update("expired_at", future)

	state, _, err = sm.ExpireCheck(result.QRCode.Code)
	assert.NoError(t, err)
	assert.Equal(t, TokenValid, state)
}

func TestUpgradePackage(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, addon := seedSessionFixtures(db)
	premium := models.Package{Name: "Paket Premium", Price: 149000, MaxCustomers: 8, Unlimited: true}
	db.Create(&premium)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)
	db.Create(&models.OrderAddon{OrderID: result.Order.ID, AddonID: addon.ID, Quantity: 2, Price: addon.Price, Status: models.ItemPending})

	order, err := sm.UpgradePackage(result.Order.ID, premium.ID)
	assert.NoError(t, err)
	assert.Equal(t, premium.ID, order.PackageID)
	assert.Equal(t, 2*premium.Price+2*addon.Price, order.TotalPrice)
}

func TestUpgradePackageOnTerminatedSession(t *testing.T) {
	db := setupSessionTestDB(t)
	table, pkg, _, _ := seedSessionFixtures(db)
	premium := models.Package{Name: "Paket Premium", Price: 149000, MaxCustomers: 8}
	db.Create(&premium)
	sm := NewSessionManager(db)

	result, _ := sm.Open(table.ID, pkg.ID, 2)
	_, err := sm.Terminate(result.Order.ID, models.OrderCancelled)
	assert.NoError(t, err)

	_, err = sm.UpgradePackage(result.Order.ID, premium.ID)
	var precondition *utils.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}
