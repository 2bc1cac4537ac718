package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/database"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// SessionManager menggerakkan lifecycle sesi: Open mengikat meja + paket
// + token QR dalam satu transaksi, Terminate membongkarnya lagi dalam
// satu transaksi. Tiga record itu (order, token, meja) tidak boleh pernah
// terlihat dalam kombinasi setengah-update.
type SessionManager struct {
	DB *gorm.DB
}

func NewSessionManager(db *gorm.DB) *SessionManager {
	return &SessionManager{DB: db}
}

// OpenResult -> sesi baru plus payload token untuk render QR
type OpenResult struct {
	Order  models.Order  `json:"order"`
	QRCode models.QRCode `json:"qr_code"`
}

// TokenState -> hasil ExpireCheck
type TokenState string

const (
	TokenValid            TokenState = "valid"
	TokenInvalidNoSession TokenState = "invalid-no-session"
	TokenExpired          TokenState = "expired"
)

// Open membuka sesi di meja yang available. Seluruh efek (order baru,
// token baru, meja occupied) atomik; kalah race atas meja menghasilkan
// ConflictError dan caller retry dari listAvailable yang segar.
func (sm *SessionManager) Open(tableID, packageID uint, customerCount int) (*OpenResult, error) {
	if customerCount < 1 {
		return nil, utils.Preconditionf("customer count must be at least 1")
	}

	tx := sm.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var pkg models.Package
	if err := tx.First(&pkg, packageID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("package %d not found", packageID)
		}
		return nil, err
	}
	if customerCount > pkg.MaxCustomers {
		tx.Rollback()
		return nil, utils.Preconditionf("package %s allows at most %d customers", pkg.Name, pkg.MaxCustomers)
	}

	var table models.Table
	if err := tx.First(&table, tableID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("table %d not found", tableID)
		}
		return nil, err
	}
	if customerCount > table.Capacity {
		tx.Rollback()
		return nil, utils.Preconditionf("table %s seats at most %d customers", table.TableNumber, table.Capacity)
	}

	// Klaim meja dengan compare-and-set: dari dua Open yang balapan,
	// tepat satu yang mendapat RowsAffected=1.
	res := tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableAvailable).
		Update("status", models.TableOccupied)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.Conflictf("table %s was claimed by another session", table.TableNumber)
	}

	order := models.Order{
		TableID:       tableID,
		PackageID:     packageID,
		CustomerCount: customerCount,
		Status:        models.OrderActive,
		PaymentStatus: models.PaymentUnpaid,
		TotalPrice:    float64(customerCount) * pkg.Price,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	qr := models.QRCode{
		OrderID: order.ID,
		Code:    uuid.NewString(),
	}
	if err := tx.Create(&qr).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := database.RecordChange(tx, "tables", tableID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordChange(tx, "orders", order.ID, models.ActionInsert); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordChange(tx, "qr_codes", qr.ID, models.ActionInsert); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d opened at table %s (package=%s, customers=%d)",
		order.ID, table.TableNumber, pkg.Name, customerCount)

	return &OpenResult{Order: order, QRCode: qr}, nil
}

// UpgradePackage mengganti referensi paket sesi yang masih open dan
// menghitung ulang TotalPrice prospektif. Record historis yang sudah
// settle tidak tersentuh.
func (sm *SessionManager) UpgradePackage(orderID, newPackageID uint) (*models.Order, error) {
	tx := sm.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("session %d not found", orderID)
		}
		return nil, err
	}
	if !order.IsOpen() {
		tx.Rollback()
		return nil, utils.Preconditionf("session %d is already terminated", orderID)
	}

	var pkg models.Package
	if err := tx.First(&pkg, newPackageID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("package %d not found", newPackageID)
		}
		return nil, err
	}
	if order.CustomerCount > pkg.MaxCustomers {
		tx.Rollback()
		return nil, utils.Preconditionf("package %s allows at most %d customers", pkg.Name, pkg.MaxCustomers)
	}

	order.PackageID = newPackageID
	total, err := prospectiveTotal(tx, order.ID, order.CustomerCount, pkg.Price)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	order.TotalPrice = total

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordChange(tx, "orders", order.ID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d upgraded to package %s", order.ID, pkg.Name)
	return &order, nil
}

// Terminate menutup sesi dengan outcome completed atau cancelled.
// Idempoten: sesi yang sudah terminated mengembalikan sukses tanpa efek,
// melindungi dari klik ganda staff dan retry network.
func (sm *SessionManager) Terminate(orderID uint, outcome models.OrderStatus) (*models.Order, error) {
	if outcome != models.OrderCompleted && outcome != models.OrderCancelled {
		return nil, utils.InvalidTransitionf("outcome must be completed or cancelled, got %s", outcome)
	}

	tx := sm.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Lock baris order dulu; write ledger yang sedang berjalan memegang
	// lock yang sama, jadi sweep tidak pernah melewatkan baris baru.
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("session %d not found", orderID)
		}
		return nil, err
	}

	if order.Status.IsTerminated() {
		tx.Rollback()
		return &order, nil
	}

	now := time.Now()

	// Sweep ledger: baris yang belum menyentuh dapur dihapus, baris
	// preparing/served dipertahankan untuk struk dan laporan.
	sweepItems := []models.ItemStatus{models.ItemConfirming, models.ItemPending, models.ItemCancelled}
	if err := tx.Where("order_id = ? AND status IN ?", orderID, sweepItems).
		Delete(&models.OrderItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	sweepAddons := []models.ItemStatus{models.ItemConfirming, models.ItemPending}
	if err := tx.Where("order_id = ? AND status IN ?", orderID, sweepAddons).
		Delete(&models.OrderAddon{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var pkg models.Package
	if err := tx.First(&pkg, order.PackageID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	total, err := prospectiveTotal(tx, order.ID, order.CustomerCount, pkg.Price)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order.Status = outcome
	order.TerminatedAt = &now
	order.TotalPrice = total
	if outcome == models.OrderCompleted {
		order.PaymentStatus = models.PaymentPaid
	}
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Token di-stamp, bukan dihapus, supaya gate membaca "expired"
	var qr models.QRCode
	if err := tx.Where("order_id = ?", orderID).First(&qr).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	qr.ExpiredAt = &now
	if err := tx.Save(&qr).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	registry := NewTableRegistry(tx)
	if err := registry.MarkAvailable(order.TableID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := database.RecordChange(tx, "orders", order.ID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := database.RecordChange(tx, "qr_codes", qr.ID, models.ActionUpdate); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d terminated (%s), table %d released",
		order.ID, outcome, order.TableID)
	return &order, nil
}

// ExpireCheck -> validasi token murni-baca untuk access gate; dijalankan
// di setiap page load customer. Expiry diamati lazily, tidak ada sweeper.
// Kode yang tidak dikenal -> invalid-no-session; token sesi yang sudah
// terminated selalu ter-stamp saat Terminate sehingga jawabannya expired.
func (sm *SessionManager) ExpireCheck(code string) (TokenState, *models.QRCode, error) {
	var qr models.QRCode
	err := sm.DB.Preload("Order").Where("code = ?", code).First(&qr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenInvalidNoSession, nil, nil
		}
		return TokenInvalidNoSession, nil, err
	}

	if qr.Expired(time.Now()) {
		return TokenExpired, &qr, nil
	}
	if qr.Order.ID == 0 {
		return TokenInvalidNoSession, &qr, nil
	}
	if !qr.Order.IsOpen() {
		// guard: sesi mati yang tokennya lolos stamp tetap tidak valid
		return TokenExpired, &qr, nil
	}
	return TokenValid, &qr, nil
}

// Get -> detail sesi dengan ledger-nya
func (sm *SessionManager) Get(orderID uint) (*models.Order, error) {
	var order models.Order
	err := sm.DB.Preload("Table").Preload("Package").
		Preload("OrderItems").Preload("OrderItems.Menu").
		Preload("OrderAddons").Preload("OrderAddons.Addon").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("session %d not found", orderID)
		}
		return nil, err
	}
	return &order, nil
}

// prospectiveTotal -> customerCount x harga paket + total add-on tercatat
func prospectiveTotal(tx *gorm.DB, orderID uint, customerCount int, pkgPrice float64) (float64, error) {
	var addonTotal float64
	err := tx.Model(&models.OrderAddon{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(quantity * price), 0)").
		Row().Scan(&addonTotal)
	if err != nil {
		return 0, err
	}
	return float64(customerCount)*pkgPrice + addonTotal, nil
}
