package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/database"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// TableRegistry memiliki record meja dan status occupancy-nya. Transisi
// status dijaga dengan compare-and-set di level SQL supaya dua penulis
// yang balapan tidak pernah sama-sama menang. Registry bisa dibangun di
// atas *gorm.DB biasa maupun transaksi.
type TableRegistry struct {
	DB *gorm.DB
}

func NewTableRegistry(db *gorm.DB) *TableRegistry {
	return &TableRegistry{DB: db}
}

// Create -> menambahkan meja baru (aksi admin)
func (tr *TableRegistry) Create(tableNumber string, capacity int) (*models.Table, error) {
	if capacity < 1 {
		return nil, utils.Preconditionf("capacity must be at least 1")
	}

	table := models.Table{
		TableNumber: tableNumber,
		Capacity:    capacity,
		Status:      models.TableAvailable,
	}
	if err := tr.DB.Create(&table).Error; err != nil {
		return nil, err
	}
	if err := database.RecordChange(tr.DB, "tables", table.ID, models.ActionInsert); err != nil {
		return nil, err
	}
	return &table, nil
}

// List -> seluruh meja
func (tr *TableRegistry) List() ([]models.Table, error) {
	var tables []models.Table
	if err := tr.DB.Order("table_number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// ListAvailable -> meja dengan status available, tanpa side effect
func (tr *TableRegistry) ListAvailable() ([]models.Table, error) {
	var tables []models.Table
	if err := tr.DB.Where("status = ?", models.TableAvailable).
		Order("table_number asc").
		Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// Get -> detail satu meja
func (tr *TableRegistry) Get(tableID uint) (*models.Table, error) {
	var table models.Table
	if err := tr.DB.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("table %d not found", tableID)
		}
		return nil, err
	}
	return &table, nil
}

// MarkOccupied mengklaim meja untuk order tertentu. Idempoten: jika meja
// sudah occupied oleh order yang sama, sukses tanpa efek; occupied oleh
// sesi aktif lain -> ConflictError.
func (tr *TableRegistry) MarkOccupied(tableID, orderID uint) error {
	res := tr.DB.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableAvailable).
		Update("status", models.TableOccupied)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return database.RecordChange(tr.DB, "tables", tableID, models.ActionUpdate)
	}

	// CAS gagal: meja tidak ada, inactive, atau sudah occupied
	table, err := tr.Get(tableID)
	if err != nil {
		return utils.Conflictf("table %d does not exist", tableID)
	}
	if table.Status == models.TableOccupied {
		var open models.Order
		err := tr.DB.Where("table_id = ? AND status IN ?", tableID,
			[]models.OrderStatus{models.OrderPending, models.OrderActive}).
			First(&open).Error
		if err == nil && open.ID == orderID {
			return nil
		}
		return utils.Conflictf("table %s is already occupied", table.TableNumber)
	}
	return utils.Conflictf("table %s is not available", table.TableNumber)
}

// MarkAvailable melepaskan meja. Idempoten terhadap meja yang sudah
// available; meja inactive tidak ikut dilepas.
func (tr *TableRegistry) MarkAvailable(tableID uint) error {
	res := tr.DB.Model(&models.Table{}).
		Where("id = ? AND status = ?", tableID, models.TableOccupied).
		Update("status", models.TableAvailable)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return database.RecordChange(tr.DB, "tables", tableID, models.ActionUpdate)
	}

	table, err := tr.Get(tableID)
	if err != nil {
		return utils.Conflictf("table %d does not exist", tableID)
	}
	if table.Status == models.TableAvailable {
		return nil
	}
	return utils.Conflictf("table %s is %s, not occupied", table.TableNumber, table.Status)
}

// Resize -> edit kapasitas oleh staff, tanpa side effect lifecycle sesi
func (tr *TableRegistry) Resize(tableID uint, capacity int) (*models.Table, error) {
	if capacity < 1 {
		return nil, utils.Preconditionf("capacity must be at least 1")
	}

	table, err := tr.Get(tableID)
	if err != nil {
		return nil, err
	}

	table.Capacity = capacity
	if err := tr.DB.Save(table).Error; err != nil {
		return nil, err
	}
	if err := database.RecordChange(tr.DB, "tables", table.ID, models.ActionUpdate); err != nil {
		return nil, err
	}
	return table, nil
}

// SetInactive -> menonaktifkan meja yang sedang tidak dipakai sesi
func (tr *TableRegistry) SetInactive(tableID uint) (*models.Table, error) {
	table, err := tr.Get(tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableOccupied {
		return nil, utils.Preconditionf("table %s has an active session", table.TableNumber)
	}

	table.Status = models.TableInactive
	if err := tr.DB.Save(table).Error; err != nil {
		return nil, err
	}
	if err := database.RecordChange(tr.DB, "tables", table.ID, models.ActionUpdate); err != nil {
		return nil, err
	}
	return table, nil
}

// Delete menghapus meja. Gagal selama masih ada order non-terminated
// yang menunjuk ke meja ini.
func (tr *TableRegistry) Delete(tableID uint) error {
	table, err := tr.Get(tableID)
	if err != nil {
		return err
	}

	var openCount int64
	if err := tr.DB.Model(&models.Order{}).
		Where("table_id = ? AND status IN ?", tableID,
			[]models.OrderStatus{models.OrderPending, models.OrderActive}).
		Count(&openCount).Error; err != nil {
		return err
	}
	if openCount > 0 {
		return utils.Preconditionf("table %s still has a non-terminated session", table.TableNumber)
	}

	if err := tr.DB.Delete(&models.Table{}, tableID).Error; err != nil {
		return err
	}
	return database.RecordChange(tr.DB, "tables", tableID, models.ActionDelete)
}
