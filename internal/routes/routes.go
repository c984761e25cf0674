package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/handlers"
	"github.com/01moynul/hidaaya-golang/internal/middleware"
)

// Options carries what the router needs beyond the handlers.
type Options struct {
	CORSOrigin      string
	UploadDir       string
	Tokens          middleware.TokenValidator
	Roles           middleware.RoleLookup
	FunctionsSecret string
	Logger          *zap.Logger
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	router := gin.New()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(middleware.CORS(opts.CORSOrigin))
	router.Use(middleware.RequestLogger(opts.Logger), middleware.Recovery(opts.Logger))

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", h.Ping)

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		// --- Storefront Catalog ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/settings/public", h.GetPublicSettings)

		// --- Cart (visitor session) ---
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddToCart)
		v1.PUT("/cart/items/:product_id", h.UpdateCartItem)
		v1.DELETE("/cart/items/:product_id", h.DeleteCartItem)
		v1.DELETE("/cart", h.ClearCart)

		// --- Checkout (guest or signed in) ---
		shop := v1.Group("/")
		shop.Use(middleware.OptionalAuth(opts.Tokens))
		{
			shop.GET("/checkout", h.GetCheckout)
			shop.PATCH("/checkout/shipping", h.UpdateShipping)
			shop.POST("/checkout/submit", h.SubmitCheckout)
			shop.POST("/checkout/cancel", h.CancelCheckout)
			shop.POST("/checkout/complete", h.CompleteCheckout)
			shop.GET("/orders/:id/receipt", h.GetReceipt)
		}

		v1.POST("/contact", h.SubmitContact)

		// --- Notification Functions (shared secret) ---
		functions := v1.Group("/functions")
		functions.Use(middleware.FunctionSecret(opts.FunctionsSecret))
		{
			functions.POST("/send-order-email", h.SendOrderEmailFunction)
			functions.POST("/send-contact-email", h.SendContactEmailFunction)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(opts.Tokens))
		admin.Use(middleware.AdminOnly(opts.Roles))
		{
			admin.GET("/dashboard-stats", h.GetDashboardStats)

			admin.POST("/products", h.CreateProduct)
			admin.POST("/products/describe", h.DescribeProduct)
			admin.PATCH("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/products/:id/images", h.AddProductImage)
			admin.POST("/upload", h.UploadFile)

			admin.GET("/orders", h.ListOrders)
			admin.GET("/orders/export", h.ExportOrders)
			admin.GET("/orders/:id", h.GetOrderDetails)
			admin.GET("/orders/:id/notifications", h.GetOrderNotifications)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

			admin.GET("/users", h.ListUsers)
			admin.PATCH("/users/:id/role", h.UpdateUserRole)

			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)

			admin.POST("/reports/daily", h.RunDailyReport)
			admin.POST("/assistant", h.ChatAI)
		}
	}

	return router
}
