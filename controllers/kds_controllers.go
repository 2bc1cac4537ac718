package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/kds"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// KDSHandler -> endpoint WebSocket untuk staff, kitchen, dan admin.
// Filter kosong: console internal menerima semua event.
func KDSHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "kitchen" && role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kds.RegisterClient(ws, kds.Filter{})

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	kds.UnregisterClient(ws)
}

// GuestKDSHandler -> WebSocket customer lewat kode QR. Filter dikunci ke
// order sesi agar customer tidak menerima event sesi meja lain.
func GuestKDSHandler(db *gorm.DB) gin.HandlerFunc {
	sm := services.NewSessionManager(db)
	return func(c *gin.Context) {
		code := c.Param("code")
		state, qr, err := sm.ExpireCheck(code)
		if err != nil || state != services.TokenValid || qr == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		kds.RegisterClient(ws, kds.Filter{OrderID: qr.OrderID})

		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				break
			}
		}

		kds.UnregisterClient(ws)
	}
}
