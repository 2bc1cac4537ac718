package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/kds"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/models"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionManager
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{
		DB:       db,
		Sessions: services.NewSessionManager(db),
	}
}

// OpenSession -> staff membuka sesi di meja available; response memuat
// payload token untuk dicetak/dirender sebagai QR di meja
func (sc *SessionController) OpenSession(c *gin.Context) {
	var req struct {
		TableID       uint `json:"table_id" binding:"required"`
		PackageID     uint `json:"package_id" binding:"required"`
		CustomerCount int  `json:"customer_count" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := sc.Sessions.Open(req.TableID, req.PackageID, req.CustomerCount)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	kds.BroadcastStaffNotification(fmt.Sprintf("Session #%d opened at table %d", result.Order.ID, req.TableID))
	utils.RespondJSON(c, http.StatusCreated, "Session opened", result)
}

// UpgradeSessionPackage -> ganti paket sesi yang masih open
func (sc *SessionController) UpgradeSessionPackage(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))
	var req struct {
		PackageID uint `json:"package_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := sc.Sessions.UpgradePackage(uint(orderID), req.PackageID)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Package upgraded", order)
}

// TerminateSession -> staff menutup sesi (checkout atau batal).
// Terminasi ganda mengembalikan sukses tanpa efek.
func (sc *SessionController) TerminateSession(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))
	var req struct {
		Outcome models.OrderStatus `json:"outcome" binding:"required"` // completed / cancelled
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := sc.Sessions.Terminate(uint(orderID), req.Outcome)
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}

	kds.BroadcastStaffNotification(fmt.Sprintf("Session #%d terminated (%s)", order.ID, order.Status))
	utils.RespondJSON(c, http.StatusOK, "Session terminated", order)
}

// GetAllSessions -> daftar sesi untuk konsol staff, terbaru dulu
func (sc *SessionController) GetAllSessions(c *gin.Context) {
	var orders []models.Order
	query := sc.DB.Preload("Table").Preload("Package").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sessions", orders)
}

// GetSessionByID -> detail sesi beserta ledger-nya
func (sc *SessionController) GetSessionByID(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := sc.Sessions.Get(uint(orderID))
	if err != nil {
		utils.RespondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", order)
}

// CheckToken -> staff mengecek state sebuah kode QR tanpa side effect
func (sc *SessionController) CheckToken(c *gin.Context) {
	state, qr, err := sc.Sessions.ExpireCheck(c.Param("code"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{"state": state}
	if qr != nil {
		data["order_id"] = qr.OrderID
	}
	utils.RespondJSON(c, http.StatusOK, "Token state", data)
}
