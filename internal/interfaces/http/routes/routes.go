// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/berkelium/storefront/internal/interfaces/http/handlers"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Handlers groups every API handler
type Handlers struct {
	Cart        *handlers.CartHandler
	Checkout    *handlers.CheckoutHandler
	Fulfillment *handlers.FulfillmentHandler
	Product     *handlers.ProductHandler
	Auth        *handlers.AuthHandler
	Order       *handlers.OrderHandler
}

// SetupRoutes mounts all API routes on rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	SetupAuthRoutes(rg, h.Auth, jwtManager)
	SetupProductRoutes(rg, h.Product)
	SetupCartRoutes(rg, h.Cart)
	SetupCheckoutRoutes(rg, h.Checkout)
	SetupOrderRoutes(rg, h.Order, jwtManager)
	SetupFulfillmentRoutes(rg, h.Fulfillment, jwtManager)
}

// SetupAuthRoutes sets up authentication and account routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, jwtManager *auth.JWTManager) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtManager), h.Logout)
	}

	account := rg.Group("/account")
	account.Use(middleware.AuthMiddleware(jwtManager))
	{
		account.GET("/me", h.GetProfile)
		account.GET("/orders", h.GetOrders)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:handle", h.GetProduct)
	}
	rg.GET("/categories", h.GetCategories)
}

// SetupCartRoutes sets up cart routes. The cart is identified by cookie.
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler) {
	checkout := rg.Group("/checkout")
	{
		checkout.GET("/config", h.GetConfig)
		checkout.POST("", h.Begin)
		checkout.GET("", h.GetState)
		checkout.POST("/contact", h.SubmitContact)
		checkout.POST("/shipping", h.SubmitShipping)
		checkout.POST("/shipping-option", h.SelectShippingOption)
		checkout.POST("/step", h.GoTo)
		checkout.POST("/complete", h.Complete)
	}
}

// SetupOrderRoutes sets up order confirmation and receipt routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, jwtManager *auth.JWTManager) {
	orders := rg.Group("/orders")
	orders.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/receipt", h.GetReceipt)
	}
}

// SetupFulfillmentRoutes sets up the order-management system endpoints
func SetupFulfillmentRoutes(rg *gin.RouterGroup, h *handlers.FulfillmentHandler, jwtManager *auth.JWTManager) {
	f := rg.Group("/fulfillment")
	f.Use(middleware.ServiceAuth(jwtManager))
	{
		f.GET("/options", h.ListOptions)
		f.POST("/options/validate", h.ValidateOption)
		f.POST("/validate", h.Validate)
		f.GET("/can-calculate", h.CanCalculate)
		f.POST("/calculate", h.Calculate)
		f.POST("/fulfillments", h.CreateFulfillment)
		f.GET("/fulfillments/:id", h.GetFulfillment)
		f.POST("/fulfillments/:id/cancel", h.CancelFulfillment)
		f.GET("/orders/:order_id/fulfillments", h.ListByOrder)
		f.POST("/returns", h.CreateReturn)
	}
}
