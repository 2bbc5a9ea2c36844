// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/brewflow-storefront/internal/interfaces/http/middleware"
)

// SetupRoutes sets up all storefront routes under rg
func SetupRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	SetupCatalogRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupCustomerRoutes(rg, deps)
	SetupAuthRoutes(rg, deps)
	SetupAdminRoutes(rg, deps)
}

// SetupCatalogRoutes sets up the public product listing
func SetupCatalogRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	productHandler := handlers.NewProductHandler(deps)

	rg.GET("/products", productHandler.GetProducts)
}

// SetupCartRoutes sets up cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	cartHandler := handlers.NewCartHandler(deps)
	checkoutHandler := handlers.NewCheckoutHandler(deps)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.POST("/items/:id/increase", cartHandler.IncreaseItem)
		cart.POST("/items/:id/decrease", cartHandler.DecreaseItem)
		cart.DELETE("/items/:id", cartHandler.RemoveItem)
	}

	rg.POST("/checkout", checkoutHandler.Checkout)
}

// SetupCustomerRoutes sets up customer identity and order history routes
func SetupCustomerRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	customerHandler := handlers.NewCustomerHandler(deps)
	orderHandler := handlers.NewOrderHandler(deps)

	customer := rg.Group("/customer")
	{
		customer.GET("", customerHandler.GetCustomer)
		customer.POST("", customerHandler.ContinueAsCustomer)
		customer.DELETE("", customerHandler.SignOut)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/:id/receipt", orderHandler.DownloadReceipt)
	}
}

// SetupAuthRoutes sets up admin authentication routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	authHandler := handlers.NewAuthHandler(deps)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/logout", authHandler.Logout)
	}
}

// SetupAdminRoutes sets up routes that need a stored admin token
func SetupAdminRoutes(rg *gin.RouterGroup, deps *handlers.Dependencies) {
	authHandler := handlers.NewAuthHandler(deps)
	productHandler := handlers.NewProductHandler(deps)
	orderHandler := handlers.NewOrderHandler(deps)
	analyticsHandler := handlers.NewAnalyticsHandler(deps)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminRequired(deps, deps.RejectUnauthorized))
	{
		admin.POST("/change-password", authHandler.ChangePassword)

		products := admin.Group("/products")
		{
			products.GET("", productHandler.AdminListProducts)
			products.POST("", productHandler.CreateProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminListOrders)
			orders.POST("/:id/advance", orderHandler.AdvanceOrder)
		}

		admin.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
	}
}
