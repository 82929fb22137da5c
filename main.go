package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cakeshop/common/auth"
	"cakeshop/common/logger"
	commonmw "cakeshop/common/middleware"
	"cakeshop/controllers"
	"cakeshop/database"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"
	"cakeshop/routes"
	"cakeshop/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	catalogCacheTTL = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type repositories struct {
	users    repository.UserRepository
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
}

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	log, err := logger.Initialize(getEnv("APP_ENV", "development"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer syncLogger(&log)()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// AWS clients are optional; without credentials the shop still serves.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	if awsErr != nil {
		log.Warn("AWS config unavailable, events, metrics and uploads disabled", zap.Error(awsErr))
	}

	if awsErr == nil && cfg.CloudWatchEnabled {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if err != nil {
			log.Warn("CloudWatch Logs unavailable", zap.Error(err))
		} else if l, err := logger.InitializeWithWriter(cfg.AppEnv, cwLogs); err == nil {
			log = l
		}
	}

	// --- 1. Store ---

	var (
		repos  *repositories
		gormDB *gorm.DB
	)
	switch cfg.StoreDriver {
	case StorePostgres:
		gormDB, err = database.Connect(cfg.Postgres)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(gormDB); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		if err := database.SeedIfEmpty(ctx, gormDB, log); err != nil {
			log.Fatal("Failed to seed database", zap.Error(err))
		}
		repos = &repositories{
			users:    repository.NewGormUserRepository(gormDB),
			products: repository.NewGormProductRepository(gormDB),
			reviews:  repository.NewGormReviewRepository(gormDB),
			orders:   repository.NewGormOrderRepository(gormDB),
		}
	default:
		mem, err := database.NewSeededMemoryDB()
		if err != nil {
			log.Fatal("Failed to seed memory store", zap.Error(err))
		}
		repos = &repositories{
			users:    repository.NewMemoryUserRepository(mem),
			products: repository.NewMemoryProductRepository(mem),
			reviews:  repository.NewMemoryReviewRepository(mem),
			orders:   repository.NewMemoryOrderRepository(mem),
		}
	}
	log.Info("Record store ready", zap.String("driver", cfg.StoreDriver))

	// --- 2. Redis (catalog cache + idempotency keys) ---

	var (
		redisClient *redis.Client
		cache       services.CatalogCache
		idem        repository.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("Failed to parse REDIS_URL, running without redis", zap.Error(err))
		} else {
			redisClient = redis.NewClient(opts)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Warn("Redis not reachable, cache and idempotency degrade to pass-through", zap.Error(err))
			}
			cache = services.NewRedisCatalogCache(redisClient, catalogCacheTTL, log)
			idem = repository.NewRedisIdempotencyStore(redisClient, "cakeshop:idempotency")
		}
	}

	// --- 3. AWS collaborators ---

	var (
		snsClient aws_pkg.SNSPublisher
		presigner services.ImagePresigner
		metrics   *aws_pkg.MetricsClient
	)
	if awsErr == nil {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
		if cfg.ImagesBucket != "" {
			presigner = aws_pkg.NewS3Presigner(awsCfg, cfg.ImagesBucket, cfg.ImagesPublicURL)
		}
	}

	// --- 4. Services and controllers ---

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal("Failed to create token service", zap.Error(err))
	}
	stripe := services.NewStripeService(cfg.StripeAPIKey, cfg.StripeWebhookSecret)
	if cfg.StripeAPIKey == "" {
		log.Warn("STRIPE_API_KEY not set, checkout uses the configured fallback policy",
			zap.Bool("mock_fallback", cfg.PaymentMockFallback))
	}

	authService := services.NewAuthService(repos.users, tokens, snsClient, cfg.AuthTopicArn, metrics, log)
	catalogService := services.NewCatalogService(repos.products, repos.reviews, cache, metrics, log)
	reviewService := services.NewReviewService(repos.reviews, repos.products, repos.users, metrics, log)
	orderService := services.NewOrderService(repos.orders, idem, cache, snsClient, cfg.OrderTopicArn, metrics, log)
	checkoutService := services.NewCheckoutService(stripe, services.CheckoutPolicy{
		Currency:     cfg.PaymentCurrency,
		MockFallback: cfg.PaymentMockFallback,
	}, metrics, log)
	adminService := services.NewAdminService(repos.products, repos.orders, presigner, log)

	authLimiter := commonmw.NewRateLimiter(rate.Every(3*time.Second), 10, 10*time.Minute)
	go authLimiter.Run(ctx)

	// --- 5. HTTP server ---

	router := routes.SetupRouter(routes.Controllers{
		Auth:     controllers.NewAuthController(authService, cfg.IsProduction()),
		Profile:  controllers.NewProfileController(authService),
		Product:  controllers.NewProductController(catalogService),
		Review:   controllers.NewReviewController(reviewService),
		Order:    controllers.NewOrderController(orderService),
		Checkout: controllers.NewCheckoutController(checkoutService),
		Admin:    controllers.NewAdminController(adminService),
		Webhook:  controllers.NewWebhookController(stripe, orderService, log),
	}, routes.Options{
		Logger:         log,
		Tokens:         tokens,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthLimiter:    authLimiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Cake shop API starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- 6. Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down Cake shop API...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if gormDB != nil {
		if err := database.Close(gormDB); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}

	log.Info("Cake shop API stopped gracefully")
}

// syncLogger flushes whichever logger *log points at when the returned
// func runs, so a logger swapped in after the defer is still flushed.
func syncLogger(log **zap.Logger) func() {
	return func() { _ = (*log).Sync() }
}
