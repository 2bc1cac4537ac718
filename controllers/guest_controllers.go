package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

// GuestController melayani client customer di balik GuestGate. Semua
// handler membaca order_id milik sesi dari context; customer tidak
// pernah bisa menunjuk sesi meja lain.
type GuestController struct {
	DB       *gorm.DB
	Sessions *services.SessionManager
	Ledger   *services.OrderLedger
}

func NewGuestController(db *gorm.DB) *GuestController {
	return &GuestController{
		DB:       db,
		Sessions: services.NewSessionManager(db),
		Ledger:   services.NewOrderLedger(db),
	}
}

func sessionOrderID(c *gin.Context) (uint, error) {
	v, exists := c.Get("order_id")
	if !exists {
		return 0, errors.New("no session in context")
	}
	orderID, ok := v.(uint)
	if !ok {
		return 0, errors.New("invalid session in context")
	}
	return orderID, nil
}

// GetSession -> tampilan sesi customer: paket, ledger, total berjalan
func (gc *GuestController) GetSession(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	order, err := gc.Sessions.Get(orderID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", order)
}

// GetMenus -> menu yang tercakup paket sesi ini (semua menu jika paket
// unlimited), plus katalog add-on berbayar
func (gc *GuestController) GetMenus(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var order models.Order
	if err := gc.DB.Preload("Package").First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var menus []models.Menu
	if order.Package.Unlimited {
		if err := gc.DB.Preload("Category").Order("name asc").Find(&menus).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	} else {
		err := gc.DB.Preload("Category").
			Joins("JOIN package_menus pm ON pm.menu_id = menus.id AND pm.package_id = ?", order.PackageID).
			Order("name asc").
			Find(&menus).Error
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	var addons []models.Addon
	if err := gc.DB.Order("name asc").Find(&addons).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menus for session", gin.H{
		"menus":  menus,
		"addons": addons,
	})
}

// UpdateCart -> tambah/kurangi quantity item confirming. Delta +1/-1
// dari tombol; limit terlampaui dijawab error inline, bukan clamp.
func (gc *GuestController) UpdateCart(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
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

	item, err := gc.Ledger.AddOrUpdateItem(orderID, req.MenuID, req.Delta)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	if item == nil {
		utils.RespondJSON(c, http.StatusOK, "Item removed from cart", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart updated", item)
}

// UpdateAddonCart -> mirror UpdateCart untuk add-on
func (gc *GuestController) UpdateAddonCart(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		AddonID uint `json:"addon_id" binding:"required"`
		Delta   int  `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	addon, err := gc.Ledger.AddOrUpdateAddon(orderID, req.AddonID, req.Delta)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	if addon == nil {
		utils.RespondJSON(c, http.StatusOK, "Add-on removed from cart", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on cart updated", addon)
}

// ConfirmItem -> customer lock in satu baris; baru setelah ini dapur
// melihatnya
func (gc *GuestController) ConfirmItem(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	item, err := gc.ownItem(orderID, uint(itemID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	confirmed, err := gc.Ledger.Confirm(item.ID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item confirmed", confirmed)
}

// ConfirmAddon -> lock in add-on
func (gc *GuestController) ConfirmAddon(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	addonID, _ := strconv.Atoi(c.Param("order_addon_id"))

	addon, err := gc.ownAddon(orderID, uint(addonID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	confirmed, err := gc.Ledger.ConfirmAddon(addon.ID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on confirmed", confirmed)
}

// RemoveItem -> hapus baris yang belum masuk dapur
func (gc *GuestController) RemoveItem(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	item, err := gc.ownItem(orderID, uint(itemID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	if err := gc.Ledger.Remove(item.ID); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", gin.H{"item_id": item.ID})
}

// RemoveAddon -> hapus add-on yang belum masuk dapur
func (gc *GuestController) RemoveAddon(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	addonID, _ := strconv.Atoi(c.Param("order_addon_id"))

	addon, err := gc.ownAddon(orderID, uint(addonID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	if err := gc.Ledger.RemoveAddon(addon.ID); err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Add-on removed", gin.H{"order_addon_id": addon.ID})
}

// Checkout -> customer mengakhiri sesinya sendiri; efeknya sama dengan
// Terminate(completed) oleh staff
func (gc *GuestController) Checkout(c *gin.Context) {
	orderID, err := sessionOrderID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	order, err := gc.Sessions.Terminate(orderID, models.OrderCompleted)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session checked out", order)
}

// ownItem memastikan baris ledger milik sesi pemanggil
func (gc *GuestController) ownItem(orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := gc.DB.First(&item, itemID).Error; err != nil {
		return nil, utils.NotFoundf("order item %d not found", itemID)
	}
	if item.OrderID != orderID {
		return nil, utils.NotFoundf("order item %d not found in this session", itemID)
	}
	return &item, nil
}

func (gc *GuestController) ownAddon(orderID, orderAddonID uint) (*models.OrderAddon, error) {
	var addon models.OrderAddon
	if err := gc.DB.First(&addon, orderAddonID).Error; err != nil {
		return nil, utils.NotFoundf("order addon %d not found", orderAddonID)
	}
	if addon.OrderID != orderID {
		return nil, utils.NotFoundf("order addon %d not found in this session", orderAddonID)
	}
	return &addon, nil
}
