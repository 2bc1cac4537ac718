package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
)

// ExpiredRedirectPath -> halaman statis untuk token invalid/expired,
// bukan stack trace.
const ExpiredRedirectPath = "/session-expired.html"

// GuestGate menjalankan ExpireCheck pada segmen path :code di setiap
// request customer. Token valid meletakkan order_id sesi ke context;
// invalid/expired di-redirect. Expiry diamati di sini secara lazy;
// request yang sudah in-flight tidak dibatalkan retroaktif.
func GuestGate(sm *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		state, qr, err := sm.ExpireCheck(code)
		if err != nil {
			c.Redirect(http.StatusTemporaryRedirect, ExpiredRedirectPath)
			c.Abort()
			return
		}

		switch state {
		case services.TokenValid:
			c.Set("order_id", qr.OrderID)
			c.Set("role", "customer")
			c.Next()
		default:
			c.Redirect(http.StatusTemporaryRedirect, ExpiredRedirectPath)
			c.Abort()
		}
	}
}
