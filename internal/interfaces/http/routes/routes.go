// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure handed to every handler
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Config    *config.Config
	Publisher *realtime.Publisher
	Mailer    *email.Service
	Logger    *logrus.Logger
}

// SetupRoutes wires every API route onto the given group
func SetupRoutes(api *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)
	productHandler := handlers.NewProductHandler(deps.DB, deps.Config)
	categoryHandler := handlers.NewCategoryHandler(deps.DB, deps.Config)
	reviewHandler := handlers.NewReviewHandler(deps.DB, deps.Config)
	cartHandler := handlers.NewCartHandler(deps.DB, deps.Redis, deps.Config)
	wishlistHandler := handlers.NewWishlistHandler(deps.DB, deps.Redis, deps.Config)
	checkoutHandler := handlers.NewCheckoutHandler(deps.DB, deps.Redis, deps.Config, deps.Publisher, deps.Mailer, deps.Logger)
	orderHandler := handlers.NewOrderHandler(deps.DB, deps.Config, deps.Publisher)
	returnsHandler := handlers.NewReturnsHandler(deps.DB, deps.Config, deps.Publisher, deps.Mailer, deps.Logger)
	couponHandler := handlers.NewCouponHandler(deps.DB, deps.Config)
	customerHandler := handlers.NewCustomerHandler(deps.DB, deps.Config)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.DB, deps.Config)
	uploadHandler := handlers.NewUploadHandler(deps.DB, deps.Config)
	eventsHandler := handlers.NewEventsHandler(deps.Publisher, deps.Config)

	// Authentication
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/logout", authHandler.Logout)

		authed := auth.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Config))
		{
			authed.GET("/me", authHandler.GetProfile)
			authed.PUT("/me", authHandler.UpdateProfile)
			authed.POST("/change-password", authHandler.ChangePassword)
			authed.GET("/validate", authHandler.ValidateToken)
		}
	}

	// Catalog (public)
	products := api.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.GET("/:id/reviews", reviewHandler.ListForProduct)
		products.GET("/:id/reviews/summary", reviewHandler.RatingSummary)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/:slug", categoryHandler.GetBySlug)
	}

	// Cart (guest or authenticated)
	cart := api.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}
	api.POST("/cart/merge", middleware.AuthMiddleware(deps.Config), cartHandler.MergeGuestCart)

	// Wishlist (guest or authenticated)
	wishlist := api.Group("/wishlist")
	wishlist.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		wishlist.GET("", wishlistHandler.Get)
		wishlist.POST("/items", wishlistHandler.Add)
		wishlist.DELETE("/items/:productId", wishlistHandler.Remove)
	}
	api.DELETE("/wishlist", middleware.AuthMiddleware(deps.Config), wishlistHandler.Clear)
	api.POST("/wishlist/merge", middleware.AuthMiddleware(deps.Config), wishlistHandler.Merge)

	// Checkout (authenticated)
	checkout := api.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(deps.Config))
	{
		checkout.GET("/summary", checkoutHandler.GetSummary)
		checkout.POST("/coupon", checkoutHandler.ApplyCoupon)
		checkout.DELETE("/coupon", checkoutHandler.RemoveCoupon)
		checkout.POST("/order", checkoutHandler.PlaceOrder)
	}

	// Orders (authenticated)
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.Config))
	{
		orders.GET("", orderHandler.ListMine)
		orders.GET("/:id", orderHandler.GetMine)
		orders.POST("/:id/cancel", orderHandler.CancelMine)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
	}

	// Returns (authenticated)
	returns := api.Group("/returns")
	returns.Use(middleware.AuthMiddleware(deps.Config))
	{
		returns.POST("", returnsHandler.Create)
		returns.GET("", returnsHandler.ListMine)
		returns.GET("/:id", returnsHandler.GetMine)
		returns.POST("/:id/cancel", returnsHandler.CancelMine)
	}

	// Reviews (authenticated)
	reviews := api.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(deps.Config))
	{
		reviews.POST("", reviewHandler.Create)
		reviews.DELETE("/:id", reviewHandler.Delete)
	}

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Config), middleware.AdminMiddleware())
	{
		admin.GET("/products", productHandler.AdminList)
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
		admin.POST("/products/:id/stock", productHandler.AdjustStock)
		admin.GET("/products/:id/inventory-logs", productHandler.GetInventoryLogs)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Update)
		admin.DELETE("/categories/:id", categoryHandler.Delete)

		admin.GET("/coupons", couponHandler.List)
		admin.POST("/coupons", couponHandler.Create)
		admin.PUT("/coupons/:id", couponHandler.Update)
		admin.DELETE("/coupons/:id", couponHandler.Delete)

		admin.GET("/orders", orderHandler.AdminList)
		admin.GET("/orders/:id", orderHandler.AdminGet)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)

		admin.GET("/returns", returnsHandler.AdminList)
		admin.GET("/returns/:id", returnsHandler.AdminGet)
		admin.PUT("/returns/:id/status", returnsHandler.AdminUpdateStatus)

		admin.GET("/reviews", reviewHandler.AdminList)
		admin.PUT("/reviews/:id/moderate", reviewHandler.AdminModerate)

		admin.GET("/customers", customerHandler.List)
		admin.GET("/customers/:id", customerHandler.Get)
		admin.POST("/customers/:id/notes", customerHandler.AddNote)
		admin.PUT("/customers/:id/active", customerHandler.SetActive)

		admin.GET("/analytics/dashboard", analyticsHandler.Dashboard)
		admin.GET("/analytics/revenue", analyticsHandler.RevenueSeries)
		admin.GET("/analytics/top-products", analyticsHandler.TopProducts)
		admin.GET("/analytics/low-stock", analyticsHandler.LowStock)
		admin.GET("/analytics/returns", returnsHandler.AdminStats)

		admin.GET("/uploads", uploadHandler.List)
		admin.POST("/uploads", uploadHandler.Upload)
		admin.DELETE("/uploads/:id", uploadHandler.Delete)

		admin.GET("/events", eventsHandler.Stream)
	}
}
