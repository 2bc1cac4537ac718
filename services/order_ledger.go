package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/database"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// OrderLedger adalah log line item + add-on sebuah sesi. Semua tulisan
// berjalan dalam transaksi yang (1) mengecek ulang sesi masih open, dan
// (2) membaca ulang quantity sesaat sebelum delta diterapkan. Tulisan
// yang balapan dengan Terminate selesai-sebelum atau ditolak-sesudah,
// tidak pernah hilang diam-diam.
type OrderLedger struct {
	DB *gorm.DB
}

func NewOrderLedger(db *gorm.DB) *OrderLedger {
	return &OrderLedger{DB: db}
}

// requireOpen memuat order dengan lock FOR UPDATE dan menolak jika sudah
// terminated. Semua write path ledger lewat sini; di MySQL (REPEATABLE
// READ) snapshot read saja tidak cukup untuk menahan Terminate yang
// sedang commit. SQLite mengabaikan locking clause, satu writer saja.
func requireOpen(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("session %d not found", orderID)
		}
		return nil, err
	}
	if !order.IsOpen() {
		return nil, utils.Preconditionf("session %d is terminated", orderID)
	}
	return &order, nil
}

// AddOrUpdateItem menambah atau menggeser quantity baris confirming untuk
// satu menu. Tanpa baris existing, delta diabaikan dan baris dibuat dengan
// quantity 1. Quantity 0 menghapus baris; melewati MaxItemQuantity gagal
// dengan LimitExceededError tanpa perubahan state.
func (ol *OrderLedger) AddOrUpdateItem(orderID, menuID uint, delta int) (*models.OrderItem, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if _, err := requireOpen(tx, orderID); err != nil {
		tx.Rollback()
		return nil, err
	}

	var menu models.Menu
	if err := tx.First(&menu, menuID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("menu %d not found", menuID)
		}
		return nil, err
	}

	var item models.OrderItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND menu_id = ? AND status = ?",
			orderID, menuID, models.ItemConfirming).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.OrderItem{
			OrderID:  orderID,
			MenuID:   menuID,
			Quantity: 1,
			Price:    menu.Price,
			Status:   models.ItemConfirming,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionInsert); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// quantity dibaca ulang di bawah row lock; dua ketukan +1 yang
	// berbarengan terserialisasi, bukan saling menimpa
	quantity := item.Quantity + delta
	if quantity > models.MaxItemQuantity {
		tx.Rollback()
		return nil, utils.LimitExceededf("at most %d of one item per order", models.MaxItemQuantity)
	}
	if quantity <= 0 {
		if err := tx.Delete(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionDelete); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	item.Quantity = quantity
	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddOrUpdateAddon -> mirror AddOrUpdateItem untuk add-on; perubahan
// quantity langsung tercermin di TotalPrice prospektif order.
func (ol *OrderLedger) AddOrUpdateAddon(orderID, addonID uint, delta int) (*models.OrderAddon, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	order, err := requireOpen(tx, orderID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var catalog models.Addon
	if err := tx.First(&catalog, addonID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("addon %d not found", addonID)
		}
		return nil, err
	}

	var addon models.OrderAddon
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND addon_id = ? AND status = ?",
			orderID, addonID, models.ItemConfirming).First(&addon).Error

	deleted := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		addon = models.OrderAddon{
			OrderID:  orderID,
			AddonID:  addonID,
			Quantity: 1,
			Price:    catalog.Price,
			Status:   models.ItemConfirming,
		}
		if err := tx.Create(&addon).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionInsert); err != nil {
			tx.Rollback()
			return nil, err
		}
	case err != nil:
		tx.Rollback()
		return nil, err
	default:
		quantity := addon.Quantity + delta
		if quantity > models.MaxItemQuantity {
			tx.Rollback()
			return nil, utils.LimitExceededf("at most %d of one add-on per order", models.MaxItemQuantity)
		}
		if quantity <= 0 {
			if err := tx.Delete(&addon).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionDelete); err != nil {
				tx.Rollback()
				return nil, err
			}
			deleted = true
		} else {
			addon.Quantity = quantity
			if err := tx.Save(&addon).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionUpdate); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	// add-on berbayar: hitung ulang total prospektif order
	var pkg models.Package
	if err := tx.First(&pkg, order.PackageID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	total, err := prospectiveTotal(tx, orderID, order.CustomerCount, pkg.Price)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).
		Update("total_price", total).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordChange(tx, "orders", orderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if deleted {
		return nil, nil
	}
	return &addon, nil
}

// Confirm -> aksi "lock in" customer: confirming => pending, satu arah.
// Baru setelah ini dapur melihat barisnya.
func (ol *OrderLedger) Confirm(itemID uint) (*models.OrderItem, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var item models.OrderItem
	if err := tx.First(&item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("order item %d not found", itemID)
		}
		return nil, err
	}
	if _, err := requireOpen(tx, item.OrderID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if item.Status != models.ItemConfirming {
		tx.Rollback()
		return nil, utils.InvalidTransitionf("confirm requires confirming status, item %d is %s", item.ID, item.Status)
	}

	item.Status = models.ItemPending
	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ConfirmAddon -> mirror Confirm untuk add-on
func (ol *OrderLedger) ConfirmAddon(orderAddonID uint) (*models.OrderAddon, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var addon models.OrderAddon
	if err := tx.First(&addon, orderAddonID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("order addon %d not found", orderAddonID)
		}
		return nil, err
	}
	if _, err := requireOpen(tx, addon.OrderID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if addon.Status != models.ItemConfirming {
		tx.Rollback()
		return nil, utils.InvalidTransitionf("confirm requires confirming status, addon %d is %s", addon.ID, addon.Status)
	}

	addon.Status = models.ItemPending
	if err := tx.Save(&addon).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &addon, nil
}

// Advance -> jalur dapur: pending => preparing => served, satu arah,
// tanpa skip, plus pembatalan pending/preparing => cancelled (stok
// habis, komplain). Transisi lain ditolak dengan InvalidTransitionError.
func (ol *OrderLedger) Advance(itemID uint, next models.ItemStatus) (*models.OrderItem, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var item models.OrderItem
	if err := tx.First(&item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("order item %d not found", itemID)
		}
		return nil, err
	}
	if _, err := requireOpen(tx, item.OrderID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if next == models.ItemPending || !item.Status.CanAdvanceTo(next) {
		tx.Rollback()
		return nil, utils.InvalidTransitionf("cannot advance item %d from %s to %s", item.ID, item.Status, next)
	}

	item.Status = next
	if err := tx.Save(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AdvanceAddon -> jalur dapur untuk add-on; add-on tidak punya status
// cancelled, salah pesan ditangani lewat RemoveAddon sebelum preparing
func (ol *OrderLedger) AdvanceAddon(orderAddonID uint, next models.ItemStatus) (*models.OrderAddon, error) {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var addon models.OrderAddon
	if err := tx.First(&addon, orderAddonID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("order addon %d not found", orderAddonID)
		}
		return nil, err
	}
	if _, err := requireOpen(tx, addon.OrderID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if next == models.ItemPending || next == models.ItemCancelled || !addon.Status.CanAdvanceTo(next) {
		tx.Rollback()
		return nil, utils.InvalidTransitionf("cannot advance addon %d from %s to %s", addon.ID, addon.Status, next)
	}

	addon.Status = next
	if err := tx.Save(&addon).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &addon, nil
}

// Remove menghapus satu baris selama masih confirming/pending. Begitu
// dapur mulai (preparing ke atas), baris tidak boleh hilang dari ledger.
func (ol *OrderLedger) Remove(itemID uint) error {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var item models.OrderItem
	if err := tx.First(&item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundf("order item %d not found", itemID)
		}
		return err
	}
	if _, err := requireOpen(tx, item.OrderID); err != nil {
		tx.Rollback()
		return err
	}
	if item.Status != models.ItemConfirming && item.Status != models.ItemPending {
		tx.Rollback()
		return utils.Preconditionf("item %d is already %s and cannot be removed", item.ID, item.Status)
	}

	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := database.RecordLedgerChange(tx, "order_items", item.ID, item.OrderID, models.ActionDelete); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// RemoveAddon -> mirror Remove untuk add-on, plus koreksi total order
func (ol *OrderLedger) RemoveAddon(orderAddonID uint) error {
	tx := ol.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var addon models.OrderAddon
	if err := tx.First(&addon, orderAddonID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundf("order addon %d not found", orderAddonID)
		}
		return err
	}
	order, err := requireOpen(tx, addon.OrderID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if addon.Status != models.ItemConfirming && addon.Status != models.ItemPending {
		tx.Rollback()
		return utils.Preconditionf("addon %d is already %s and cannot be removed", addon.ID, addon.Status)
	}

	if err := tx.Delete(&addon).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := database.RecordLedgerChange(tx, "order_addons", addon.ID, addon.OrderID, models.ActionDelete); err != nil {
		tx.Rollback()
		return err
	}

	var pkg models.Package
	if err := tx.First(&pkg, order.PackageID).Error; err != nil {
		tx.Rollback()
		return err
	}
	total, err := prospectiveTotal(tx, order.ID, order.CustomerCount, pkg.Price)
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("total_price", total).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := database.RecordChange(tx, "orders", order.ID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// ItemsForOrder -> ledger satu sesi untuk tampilan customer
func (ol *OrderLedger) ItemsForOrder(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := ol.DB.Preload("Menu").
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// AddonsForOrder -> add-on satu sesi
func (ol *OrderLedger) AddonsForOrder(orderID uint) ([]models.OrderAddon, error) {
	var addons []models.OrderAddon
	err := ol.DB.Preload("Addon").
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&addons).Error
	return addons, err
}

// KitchenQueue -> item yang sudah dikomit customer dan belum selesai,
// terlama dulu; inilah yang tampil di layar dapur.
func (ol *OrderLedger) KitchenQueue() ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := ol.DB.Preload("Menu").Preload("Order").Preload("Order.Table").
		Where("status IN ?", []models.ItemStatus{models.ItemPending, models.ItemPreparing}).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}
