package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

type TableController struct {
	Registry *services.TableRegistry
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{Registry: services.NewTableRegistry(db)}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Registry.Create(req.TableNumber, req.Capacity)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Registry.List()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetAvailableTables -> meja yang bisa dibuka sesi baru; caller Open
// retry dari daftar segar ini setelah kalah race
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	tables, err := tc.Registry.ListAvailable()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))

	table, err := tc.Registry.Get(uint(tableID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// ResizeTable -> staff mengubah kapasitas meja
func (tc *TableController) ResizeTable(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))
	var body struct {
		Capacity int `json:"capacity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Registry.Resize(uint(tableID), body.Capacity)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d resized to capacity %d", table.ID, table.Capacity)
	utils.RespondJSON(c, http.StatusOK, "Table resized", table)
}

// DeactivateTable -> meja keluar dari rotasi tanpa dihapus
func (tc *TableController) DeactivateTable(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))

	table, err := tc.Registry.SetInactive(uint(tableID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deactivated", table)
}

// DeleteTable -> menghapus meja yang tidak sedang dipakai sesi
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))

	if err := tc.Registry.Delete(uint(tableID)); err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", tableID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": tableID,
	})
}
