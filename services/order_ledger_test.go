package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
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

// openLedgerSession -> sesi open siap pakai plus fixture menu/add-on
func openLedgerSession(t *testing.T, db *gorm.DB) (models.Order, models.Menu, models.Addon, models.Package) {
	table := models.Table{TableNumber: "B2", Capacity: 4, Status: models.TableAvailable}
	db.Create(&table)
	pkg := models.Package{Name: "Paket Hemat", Price: 79000, MaxCustomers: 4}
	db.Create(&pkg)
	category := models.MenuCategory{Name: "Sayur"}
	db.Create(&category)
	menu := models.Menu{CategoryID: category.ID, Name: "Enoki", Price: 0, Stock: 50}
	db.Create(&menu)
	addon := models.Addon{Name: "Lemon Tea", Price: 10000, Stock: 50}
	db.Create(&addon)

	sm := NewSessionManager(db)
	result, err := sm.Open(table.ID, pkg.ID, 2)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	return result.Order, menu, addon, pkg
}

func TestAddItemCreatesSingleConfirming(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	// baris baru selalu quantity 1, delta diabaikan
	item, err := ledger.AddOrUpdateItem(order.ID, menu.ID, 3)
	assert.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, models.ItemConfirming, item.Status)
}

func TestItemQuantityCap(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, err := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	assert.NoError(t, err)
	for i := 0; i < models.MaxItemQuantity-1; i++ {
		item, err = ledger.AddOrUpdateItem(order.ID, menu.ID, 1)
		assert.NoError(t, err)
	}
	assert.Equal(t, models.MaxItemQuantity, item.Quantity)

	// ketukan keenam ditolak tanpa mengubah state
	_, err = ledger.AddOrUpdateItem(order.ID, menu.ID, 1)
	var limit *utils.LimitExceededError
	assert.ErrorAs(t, err, &limit)

	var reloaded models.OrderItem
	db.First(&reloaded, item.ID)
	assert.Equal(t, models.MaxItemQuantity, reloaded.Quantity)
}

func TestItemQuantityZeroDeletes(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, err := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	assert.NoError(t, err)

	result, err := ledger.AddOrUpdateItem(order.ID, menu.ID, -1)
	assert.NoError(t, err)
	assert.Nil(t, result)

	var count int64
	db.Model(&models.OrderItem{}).Where("id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestConfirmOneWay(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)

	confirmed, err := ledger.Confirm(item.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemPending, confirmed.Status)

	// confirm kedua pada baris pending ditolak
	_, err = ledger.Confirm(item.ID)
	var invalid *utils.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestAdvanceKitchenPath(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	item, _ = ledger.Confirm(item.ID)

	var invalid *utils.InvalidTransitionError

	// skip langkah ditolak
	_, err := ledger.Advance(item.ID, models.ItemServed)
	assert.ErrorAs(t, err, &invalid)

	item, err = ledger.Advance(item.ID, models.ItemPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemPreparing, item.Status)

	// mundur ditolak
	_, err = ledger.Advance(item.ID, models.ItemPending)
	assert.ErrorAs(t, err, &invalid)

	item, err = ledger.Advance(item.ID, models.ItemServed)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemServed, item.Status)

	_, err = ledger.Advance(item.ID, models.ItemServed)
	assert.ErrorAs(t, err, &invalid)
}

func TestRemoveOnlyBeforeKitchen(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	assert.NoError(t, ledger.Remove(item.ID))

	item, _ = ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	item, _ = ledger.Confirm(item.ID)
	assert.NoError(t, ledger.Remove(item.ID))

	item, _ = ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	item, _ = ledger.Confirm(item.ID)
	item, _ = ledger.Advance(item.ID, models.ItemPreparing)

	// dapur sudah mulai; baris tidak boleh hilang dari ledger
	err := ledger.Remove(item.ID)
	var precondition *utils.PreconditionError
	assert.ErrorAs(t, err, &precondition)
}

func TestLedgerRejectsWritesAfterTerminate(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, addon, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)
	sm := NewSessionManager(db)

	item, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	item, _ = ledger.Confirm(item.ID)
	item, _ = ledger.Advance(item.ID, models.ItemPreparing)

	_, err := sm.Terminate(order.ID, models.OrderCompleted)
	assert.NoError(t, err)

	var precondition *utils.PreconditionError

	_, err = ledger.AddOrUpdateItem(order.ID, menu.ID, 1)
	assert.ErrorAs(t, err, &precondition)

	_, err = ledger.AddOrUpdateAddon(order.ID, addon.ID, 1)
	assert.ErrorAs(t, err, &precondition)

	// baris preparing yang selamat dari sweep pun membeku
	_, err = ledger.Advance(item.ID, models.ItemServed)
	assert.ErrorAs(t, err, &precondition)
}

func TestAddonAdjustsOrderTotal(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, _, addon, pkg := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	base := float64(order.CustomerCount) * pkg.Price

	row, err := ledger.AddOrUpdateAddon(order.ID, addon.ID, 0)
	assert.NoError(t, err)
	row, err = ledger.AddOrUpdateAddon(order.ID, addon.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, row.Quantity)

	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.Equal(t, base+2*addon.Price, reloaded.TotalPrice)

	assert.NoError(t, ledger.RemoveAddon(row.ID))
	db.First(&reloaded, order.ID)
	assert.Equal(t, base, reloaded.TotalPrice)
}

func TestKitchenQueueOrdering(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, _, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	// confirming tidak tampil di dapur
	first, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)

	queue, err := ledger.KitchenQueue()
	assert.NoError(t, err)
	assert.Len(t, queue, 0)

	first, _ = ledger.Confirm(first.ID)

	queue, err = ledger.KitchenQueue()
	assert.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, first.ID, queue[0].ID)

	// preparing tetap tampil, served hilang
	first, _ = ledger.Advance(first.ID, models.ItemPreparing)
	queue, _ = ledger.KitchenQueue()
	assert.Len(t, queue, 1)

	_, err = ledger.Advance(first.ID, models.ItemServed)
	assert.NoError(t, err)
	queue, _ = ledger.KitchenQueue()
	assert.Len(t, queue, 0)
}

func TestKitchenCancelsItem(t *testing.T) {
	db := setupLedgerTestDB(t)
	order, menu, addon, _ := openLedgerSession(t, db)
	ledger := NewOrderLedger(db)

	item, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	item, _ = ledger.Confirm(item.ID)

	// stok habis: dapur membatalkan baris pending
	item, err := ledger.Advance(item.ID, models.ItemCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemCancelled, item.Status)

	// baris cancelled mati, tidak bisa maju lagi
	var invalid *utils.InvalidTransitionError
	_, err = ledger.Advance(item.ID, models.ItemPreparing)
	assert.ErrorAs(t, err, &invalid)

	queue, _ := ledger.KitchenQueue()
	assert.Len(t, queue, 0)

	// dari preparing juga boleh dibatalkan
	second, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	second, _ = ledger.Confirm(second.ID)
	second, _ = ledger.Advance(second.ID, models.ItemPreparing)
	second, err = ledger.Advance(second.ID, models.ItemCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemCancelled, second.Status)

	// confirming belum milik dapur, tidak bisa dibatalkan dari sana
	third, _ := ledger.AddOrUpdateItem(order.ID, menu.ID, 0)
	_, err = ledger.Advance(third.ID, models.ItemCancelled)
	assert.ErrorAs(t, err, &invalid)

	// add-on tidak punya jalur cancelled
	oa, _ := ledger.AddOrUpdateAddon(order.ID, addon.ID, 0)
	oa, _ = ledger.ConfirmAddon(oa.ID)
	_, err = ledger.AdvanceAddon(oa.ID, models.ItemCancelled)
	assert.ErrorAs(t, err, &invalid)

	// sweep terminasi menghapus baris cancelled
	sm := NewSessionManager(db)
	_, err = sm.Terminate(order.ID, models.OrderCompleted)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.OrderItem{}).
		Where("order_id = ? AND status = ?", order.ID, models.ItemCancelled).
		Count(&count)
	assert.Equal(t, int64(0), count)
}
