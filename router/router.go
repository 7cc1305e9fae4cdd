package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/billiard-pos/controllers"
	"github.com/danuarta/billiard-pos/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	productCtrl := controllers.NewProductController(db)
	sessionCtrl := controllers.NewSessionController(db)
	orderCtrl := controllers.NewOrderController(db)
	tabCtrl := controllers.NewTabController(db)
	shiftCtrl := controllers.NewShiftController(db)
	inventoryCtrl := controllers.NewInventoryController(db)

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

	// ----------------------------------------------------------------
	//                      PROTECTED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		// Referensi: meja & produk. Endpoint produk juga dipakai terminal
		// untuk menarik snapshot cache offline-nya.
		auth.GET("/tables", tableCtrl.GetAllTables)
		auth.POST("/tables", middlewares.RequireRole("admin"), tableCtrl.CreateTable)
		auth.GET("/products", productCtrl.GetAllProducts)
		auth.POST("/products", middlewares.RequireRole("admin"), productCtrl.CreateProduct)
		auth.GET("/products/:product_id/recipes", productCtrl.GetRecipes)
		auth.POST("/recipes", middlewares.RequireRole("admin"), productCtrl.CreateRecipe)

		// Sesi meja: buka, pause/resume, estimasi live, tutup + tagih
		auth.POST("/sessions", sessionCtrl.OpenSession)
		auth.GET("/sessions/:session_id", sessionCtrl.GetSession)
		auth.PATCH("/sessions/:session_id/pause", sessionCtrl.PauseSession)
		auth.PATCH("/sessions/:session_id/resume", sessionCtrl.ResumeSession)
		auth.GET("/sessions/:session_id/estimate", sessionCtrl.GetEstimate)
		auth.POST("/sessions/:session_id/close", sessionCtrl.CloseSession)

		// Pesanan di tab sesi
		auth.POST("/sessions/:session_id/items", orderCtrl.AddItems)
		auth.GET("/sessions/:session_id/order", orderCtrl.GetOrder)
		auth.GET("/orders/:order_id/payment", orderCtrl.GetPayment)

		// Kasbon customer
		auth.POST("/customers", tabCtrl.CreateCustomer)
		auth.POST("/customers/:customer_id/charge", tabCtrl.ChargeToTab)
		auth.POST("/customers/:customer_id/payment", tabCtrl.PayToTab)
		auth.GET("/customers/:customer_id/balance", tabCtrl.GetBalance)
		auth.GET("/customers/:customer_id/statement", tabCtrl.GetStatement)

		// Shift kas
		auth.POST("/shifts", shiftCtrl.StartShift)
		auth.GET("/shifts/current", shiftCtrl.GetCurrentShift)
		auth.GET("/shifts/:shift_id/expected-cash", shiftCtrl.GetExpectedCash)
		auth.POST("/shifts/:shift_id/end", shiftCtrl.EndShift)

		// Stok
		auth.POST("/inventory/items", middlewares.RequireRole("admin"), inventoryCtrl.CreateItem)
		auth.POST("/inventory/movements", inventoryCtrl.RecordMovement)
		auth.GET("/inventory/items/:item_id/stock", inventoryCtrl.GetStock)
		auth.GET("/inventory/items/:item_id/movements", inventoryCtrl.GetMovements)
	}

	return r
}
