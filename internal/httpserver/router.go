package httpserver

import (
	"log"
	"time"

	"market-api/internal/httpserver/auth"
	"market-api/internal/service/cart"
	"market-api/internal/service/delivery"
	"market-api/internal/service/payment"
	"market-api/internal/service/product"
	"market-api/internal/service/review"
	"market-api/internal/service/user"
	"market-api/internal/service/wishlist"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps bundles the services the router exposes.
type Deps struct {
	Auth       *auth.Issuer
	Users      *user.Service
	Products   *product.Service
	Carts      *cart.Service
	Payments   *payment.Service
	Wishlists  *wishlist.Service
	Reviews    *review.Service
	Deliveries *delivery.Service
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	authed := authRequired(deps.Auth)
	admin := adminOnly()

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", registerHandler(deps.Users))
		authGroup.POST("/login", loginHandler(deps.Users))
	}

	users := router.Group("/users", authed)
	{
		users.GET("/me", currentUserHandler(deps.Users))
		users.PUT("/:id", updateUserHandler(deps.Users))
		users.DELETE("/:id", admin, deleteUserHandler(deps.Users))
	}

	products := router.Group("/products")
	{
		products.GET("", listProductsHandler(deps.Products))
		products.GET("/:id", getProductHandler(deps.Products))
		products.POST("", authed, admin, createProductHandler(deps.Products))
		products.PUT("/:id", authed, admin, updateProductHandler(deps.Products))
		products.DELETE("/:id", authed, admin, deleteProductHandler(deps.Products))

		products.GET("/:id/reviews", listReviewsHandler(deps.Reviews))
		products.POST("/:id/reviews", authed, addReviewHandler(deps.Reviews))
		products.GET("/:id/reviews/eligibility", authed, reviewEligibilityHandler(deps.Reviews))
	}
	router.DELETE("/reviews/:id", authed, deleteReviewHandler(deps.Reviews))

	cartGroup := router.Group("/cart", authed)
	{
		cartGroup.GET("", getCartHandler(deps.Carts))
		cartGroup.POST("", addToCartHandler(deps.Carts))
		cartGroup.PUT("/:id", updateCartItemHandler(deps.Carts))
		cartGroup.DELETE("/:id", removeCartItemHandler(deps.Carts))
		cartGroup.DELETE("", clearCartHandler(deps.Carts))
	}

	wishlistGroup := router.Group("/wishlist", authed)
	{
		wishlistGroup.GET("", listWishlistHandler(deps.Wishlists))
		wishlistGroup.POST("", addWishlistHandler(deps.Wishlists))
		wishlistGroup.DELETE("/:productId", removeWishlistHandler(deps.Wishlists))
	}

	paymentGroup := router.Group("/payment")
	{
		paymentGroup.POST("/webhook", webhookHandler(deps.Payments))
		paymentGroup.GET("/currencies", currenciesHandler(deps.Payments))

		paymentGroup.POST("/create", authed, createPaymentHandler(deps.Payments))
		paymentGroup.GET("/check/:orderId", authed, checkOrderHandler(deps.Payments))
		paymentGroup.GET("/orders", authed, listOrdersHandler(deps.Payments))
		paymentGroup.GET("/orders/:orderId/items", authed, orderItemsHandler(deps.Payments))
		paymentGroup.POST("/test-complete/:orderId", authed, testCompleteHandler(deps.Payments))

		paymentGroup.POST("/admin/fake-payment/:orderId", authed, admin, fakePaymentHandler(deps.Payments))
		paymentGroup.GET("/admin/all-orders", authed, admin, adminOrdersHandler(deps.Payments))
	}

	deliveries := router.Group("/deliveries")
	{
		deliveries.GET("/track/:trackingNumber", trackDeliveryHandler(deps.Deliveries))

		deliveries.POST("", authed, createDeliveryHandler(deps.Deliveries))
		deliveries.GET("/order/:orderId", authed, getDeliveryHandler(deps.Deliveries))
		deliveries.PUT("/order/:orderId", authed, updateDeliveryHandler(deps.Deliveries))

		deliveries.PUT("/:id/tracking", authed, admin, setTrackingHandler(deps.Deliveries))
		deliveries.PUT("/:id/status", authed, admin, setDeliveryStatusHandler(deps.Deliveries))
	}

	return router
}
