package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// OrderController -> sisi dapur dan staff dari ledger: antrian masak,
// advance status, dan koreksi baris atas nama customer
type OrderController struct {
	DB     *gorm.DB
	Ledger *services.OrderLedger
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Ledger: services.NewOrderLedger(db)}
}

// GetKitchenQueue -> semua baris pending dan preparing lintas sesi,
// urut paling lama dulu
func (oc *OrderController) GetKitchenQueue(c *gin.Context) {
	items, err := oc.Ledger.KitchenQueue()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", items)
}

// GetOrderItems -> ledger item satu sesi untuk tampilan staff
func (oc *OrderController) GetOrderItems(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items, err := oc.Ledger.ItemsForOrder(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	addons, err := oc.Ledger.AddonsForOrder(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order ledger", gin.H{
		"items":  items,
		"addons": addons,
	})
}

// AdvanceItem -> dapur menggeser status item maju satu langkah
func (oc *OrderController) AdvanceItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status models.ItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Ledger.Advance(uint(itemID), req.Status)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item status updated", item)
}

// AdvanceAddon -> dapur menggeser status add-on maju satu langkah
func (oc *OrderController) AdvanceAddon(c *gin.Context) {
	addonID, err := strconv.Atoi(c.Param("order_addon_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Status models.ItemStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	addon, err := oc.Ledger.AdvanceAddon(uint(addonID), req.Status)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on status updated", addon)
}

// StaffUpdateItem -> staff menambah/mengurangi item atas nama customer,
// aturan quantity dan status sama dengan jalur customer
func (oc *OrderController) StaffUpdateItem(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		MenuID uint `json:"menu_id" binding:"required"`
		Delta  int  `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Ledger.AddOrUpdateItem(uint(orderID), req.MenuID, req.Delta)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	if item == nil {
		utils.RespondJSON(c, http.StatusOK, "Item removed", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}

// StaffRemoveItem -> staff menghapus baris yang belum dimasak
func (oc *OrderController) StaffRemoveItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Ledger.Remove(uint(itemID)); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", gin.H{"item_id": itemID})
}
