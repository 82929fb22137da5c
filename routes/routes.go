package routes

import (
	"net/http"
	"time"

	apperrors "cakeshop/common/errors"
	commonmw "cakeshop/common/middleware"
	"cakeshop/common/validation"
	"cakeshop/controllers"
	"cakeshop/middleware"
	awspkg "cakeshop/pkg/aws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ServiceName = "cakeshop"

// Controllers groups the HTTP handlers mounted by SetupRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	Profile  *controllers.ProfileController
	Product  *controllers.ProductController
	Review   *controllers.ReviewController
	Order    *controllers.OrderController
	Checkout *controllers.CheckoutController
	Admin    *controllers.AdminController
	Webhook  *controllers.WebhookController
}

// Options carries the cross-cutting collaborators of the router.
type Options struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Metrics        *awspkg.MetricsClient
	AllowedOrigins []string
	// AuthLimiter throttles the identity endpoints. Nil disables throttling.
	AuthLimiter    *commonmw.RateLimiter
	RequestTimeout time.Duration
}

// SetupRouter builds the gin engine with the full middleware chain and
// every storefront route.
func SetupRouter(c Controllers, opts Options) *gin.Engine {
	validation.Register()

	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(commonmw.RequestID())
	r.Use(commonmw.RequestLogger(opts.Logger))
	r.Use(commonmw.SecurityHeaders())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(commonmw.MetricsMiddleware(opts.Metrics, ServiceName))
	r.Use(commonmw.Timeout(opts.RequestTimeout))
	r.Use(apperrors.ErrorMiddleware(opts.Logger))
	r.Use(middleware.Identity(opts.Tokens))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": ServiceName})
	})

	identity := r.Group("/")
	if opts.AuthLimiter != nil {
		identity.Use(opts.AuthLimiter.Middleware())
	}
	{
		identity.POST("/register", c.Auth.Register)
		identity.POST("/login", c.Auth.Login)
		identity.POST("/reset-password", c.Auth.RequestPasswordReset)
		identity.POST("/reset-password/confirm", c.Auth.ConfirmPasswordReset)
	}
	r.POST("/logout", c.Auth.Logout)
	r.GET("/me", c.Auth.Me)

	products := r.Group("/products")
	{
		products.GET("", c.Product.ListProducts)
		products.GET("/:id", c.Product.GetProduct)
		products.GET("/:id/reviews", c.Review.ListReviews)
		products.POST("/:id/reviews", middleware.RequireAuth(), c.Review.CreateReview)
		products.POST("", middleware.AdminOnly(), c.Product.CreateProduct)
		products.PUT("/:id", middleware.AdminOnly(), c.Product.UpdateProduct)
		products.DELETE("/:id", middleware.AdminOnly(), c.Product.DeleteProduct)
	}

	orders := r.Group("/orders", middleware.RequireAuth())
	{
		orders.GET("", c.Order.ListOrders)
		orders.POST("", c.Order.CreateOrder)
		orders.GET("/:id", c.Order.GetOrder)
		orders.PUT("/:id", middleware.AdminOnly(), c.Order.UpdateOrderStatus)
	}

	r.POST("/checkout", middleware.RequireAuth(), c.Checkout.Checkout)

	profile := r.Group("/profile", middleware.RequireAuth())
	{
		profile.GET("", c.Profile.GetProfile)
		profile.PUT("", c.Profile.UpdateProfile)
	}

	admin := r.Group("/admin", middleware.AdminOnly())
	{
		admin.GET("/dashboard", c.Admin.Dashboard)
		admin.POST("/uploads/presign", c.Admin.PresignUpload)
	}

	r.POST("/webhooks/stripe", c.Webhook.StripeWebhook)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", commonmw.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", commonmw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			// Credentialed CORS cannot use a literal wildcard, so echo the origin.
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	cfg.AllowOrigins = origins
	return cfg
}
