package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/controllers"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/middlewares"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Limiter global per IP (50 req/detik); harus terpasang sebelum
	// route didaftarkan karena gin membekukan handler chain per route
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db)
	guestCtrl := controllers.NewGuestController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	addonCtrl := controllers.NewAddonController(db)
	packageCtrl := controllers.NewPackageController(db)
	orderCtrl := controllers.NewOrderController(db)
	reportCtrl := controllers.NewReportController(db)

	sessions := services.NewSessionManager(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Cek status token tanpa membuka sesi (dipakai landing page QR)
	r.GET("/sessions/check/:code", sessionCtrl.CheckToken)

	// ----------------------------------------------------------------
	//              CUSTOMER ROUTES (gate lewat kode QR)
	// ----------------------------------------------------------------
	guest := r.Group("/guest/:code")
	guest.Use(middlewares.GuestGate(sessions))
	{
		guest.GET("/session", guestCtrl.GetSession)
		guest.GET("/menus", guestCtrl.GetMenus)
		guest.POST("/items", guestCtrl.UpdateCart)
		guest.POST("/items/:item_id/confirm", guestCtrl.ConfirmItem)
		guest.DELETE("/items/:item_id", guestCtrl.RemoveItem)
		guest.POST("/addons", guestCtrl.UpdateAddonCart)
		guest.POST("/addons/:order_addon_id/confirm", guestCtrl.ConfirmAddon)
		guest.DELETE("/addons/:order_addon_id", guestCtrl.RemoveAddon)
		guest.POST("/checkout", guestCtrl.Checkout)
	}

	// WebSocket customer, filter terkunci ke sesi milik kode
	r.GET("/ws/guest/:code", controllers.GuestKDSHandler(db))

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", middlewares.RequireRole(), userCtrl.GetAllUsers)

	// TABLES (staff/admin)
	staffOnly := middlewares.RequireRole("staff")
	kitchenOnly := middlewares.RequireRole("kitchen", "staff")

	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/available", tableCtrl.GetAvailableTables)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables", staffOnly, tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id/capacity", staffOnly, tableCtrl.ResizeTable)
	auth.PATCH("/tables/:table_id/deactivate", staffOnly, tableCtrl.DeactivateTable)
	auth.DELETE("/tables/:table_id", middlewares.RequireRole(), tableCtrl.DeleteTable)

	// SESSIONS (staff/admin)
	auth.GET("/sessions", sessionCtrl.GetAllSessions)
	auth.GET("/sessions/:order_id", sessionCtrl.GetSessionByID)
	auth.POST("/sessions", staffOnly, sessionCtrl.OpenSession)
	auth.PATCH("/sessions/:order_id/package", staffOnly, sessionCtrl.UpgradeSessionPackage)
	auth.POST("/sessions/:order_id/terminate", staffOnly, sessionCtrl.TerminateSession)

	// LEDGER atas nama customer (staff)
	auth.GET("/sessions/:order_id/items", orderCtrl.GetOrderItems)
	auth.POST("/sessions/:order_id/items", staffOnly, orderCtrl.StaffUpdateItem)
	auth.DELETE("/order-items/:item_id", staffOnly, orderCtrl.StaffRemoveItem)

	// KDS item-level (kitchen)
	auth.GET("/kitchen/queue", kitchenOnly, orderCtrl.GetKitchenQueue)
	auth.PATCH("/order-items/:item_id/status", kitchenOnly, orderCtrl.AdvanceItem)
	auth.PATCH("/order-addons/:order_addon_id/status", kitchenOnly, orderCtrl.AdvanceAddon)

	// MENU CATEGORIES (staff/admin)
	auth.GET("/categories", categoryCtrl.GetAllCategories)
	auth.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
	auth.POST("/categories", staffOnly, categoryCtrl.CreateCategory)
	auth.PATCH("/categories/:cat_id", staffOnly, categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:cat_id", middlewares.RequireRole(), categoryCtrl.DeleteCategory)

	// MENUS (staff/admin)
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.GET("/menus/by-category", menuCtrl.GetMenuByCategory)
	auth.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	auth.POST("/menus", staffOnly, menuCtrl.CreateMenu)
	auth.PATCH("/menus/:menu_id", staffOnly, menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", middlewares.RequireRole(), menuCtrl.DeleteMenu)

	// ADD-ONS (staff/admin)
	auth.GET("/addons", addonCtrl.GetAllAddons)
	auth.GET("/addons/:addon_id", addonCtrl.GetAddonByID)
	auth.POST("/addons", staffOnly, addonCtrl.CreateAddon)
	auth.PATCH("/addons/:addon_id", staffOnly, addonCtrl.UpdateAddon)
	auth.DELETE("/addons/:addon_id", middlewares.RequireRole(), addonCtrl.DeleteAddon)

	// PACKAGES (admin)
	auth.GET("/packages", packageCtrl.GetAllPackages)
	auth.GET("/packages/:package_id", packageCtrl.GetPackageByID)
	auth.POST("/packages", middlewares.RequireRole(), packageCtrl.CreatePackage)
	auth.PATCH("/packages/:package_id", middlewares.RequireRole(), packageCtrl.UpdatePackage)
	auth.DELETE("/packages/:package_id", middlewares.RequireRole(), packageCtrl.DeletePackage)

	// REPORTS (admin)
	auth.GET("/reports/sales", middlewares.RequireRole(), reportCtrl.GetSalesSummary)
	auth.GET("/reports/sales/chart", middlewares.RequireRole(), reportCtrl.GetSalesChart)
	auth.GET("/sessions/:order_id/receipt", reportCtrl.GetReceipt)
	auth.GET("/sessions/:order_id/receipt/pdf", reportCtrl.GetReceiptPDF)

	// WebSocket endpoint internal dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.KDSHandler)
	}

	return r
}
