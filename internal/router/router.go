package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/config"
	"github.com/ikkim/shopfront/internal/app/controller"
	"github.com/ikkim/shopfront/internal/middleware"
)

type Router struct {
	cartController      *controller.CartController
	checkoutController  *controller.CheckoutController
	orderController     *controller.OrderController
	addressController   *controller.AddressController
	productController   *controller.ProductController
	sessionController   *controller.SessionController
	websocketController *controller.WebSocketController
	reportController    *controller.ReportController
	authMiddleware      *middleware.AuthMiddleware
	health              gin.HandlerFunc
	config              *config.Config
}

func NewRouter(
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	addressController *controller.AddressController,
	productController *controller.ProductController,
	sessionController *controller.SessionController,
	websocketController *controller.WebSocketController,
	reportController *controller.ReportController,
	authMiddleware *middleware.AuthMiddleware,
	health gin.HandlerFunc,
	cfg *config.Config,
) *Router {
	return &Router{
		cartController:      cartController,
		checkoutController:  checkoutController,
		orderController:     orderController,
		addressController:   addressController,
		productController:   productController,
		sessionController:   sessionController,
		websocketController: websocketController,
		reportController:    reportController,
		authMiddleware:      authMiddleware,
		health:              health,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/load", r.cartController.LoadCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PATCH("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.DELETE("/sellers/:sellerId", r.cartController.RemoveSellerItems)
			cart.DELETE("/error", r.cartController.ClearError)
		}

		v1.POST("/checkout", r.checkoutController.Checkout)

		orders := v1.Group("/orders")
		{
			orders.GET("", r.orderController.GetOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
		}

		seller := v1.Group("/seller")
		seller.Use(r.authMiddleware.RequireRole(middleware.RoleSeller))
		{
			seller.GET("/orders", r.orderController.GetSellerOrders)
			seller.POST("/orders/:id/progress", r.orderController.ProgressOrder)
			seller.POST("/orders/:id/cancel", r.orderController.SellerCancelOrder)
		}

		addresses := v1.Group("/addresses")
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.POST("/parse", r.addressController.ParseAddress)
			addresses.GET("/:id", r.addressController.GetAddress)
			addresses.PATCH("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		v1.POST("/session/logout", r.sessionController.Logout)
		v1.GET("/ws/cart", r.websocketController.HandleCart)

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/reports/checkouts", r.reportController.ExportCheckouts)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
