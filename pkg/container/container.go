package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/config"
	orderHandler "storefront-backend/internal/domains/order/handler"
	orderRepo "storefront-backend/internal/domains/order/repository"
	orderService "storefront-backend/internal/domains/order/service"
	"storefront-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "storefront-backend/internal/domains/payment/handler"
	paymentJob "storefront-backend/internal/domains/payment/job"
	paymentRepo "storefront-backend/internal/domains/payment/repository"
	paymentService "storefront-backend/internal/domains/payment/service"
	infraCache "storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa dependencies dùng chung giữa API và worker.
// Thứ tự init: Config -> Infrastructure -> Repositories -> Services -> Handlers
type Container struct {
	// INFRASTRUCTURE
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	JWTManager *jwt.Manager
	VNPay      *vnpay.Client

	// REPOSITORIES
	OrderRepo       orderRepo.OrderRepository
	CallbackLogRepo paymentRepo.CallbackLogRepository

	// SERVICES
	OrderService   orderService.OrderService
	PaymentService paymentService.PaymentService

	// HANDLERS
	OrderHandler   *orderHandler.OrderHandler
	PaymentHandler *paymentHandler.PaymentHandler

	// JOBS
	ReconcilePendingHandler *paymentJob.ReconcilePendingHandler
}

// NewContainer tạo toàn bộ dependency graph. Nếu thứ tự sai -> nil pointer
func NewContainer(ctx context.Context) (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("✅ Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.Database)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(connectCtx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(connectCtx); err != nil {
		// Redis chỉ dùng làm guard chống xử lý callback trùng, DB vẫn là nguồn sự thật
		log.Warn().Err(err).Msg("⚠️  Redis connection failed (non-critical)")
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, "storefront")

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// ========================================
	// STEP 4: VNPAY CLIENT
	// ========================================
	c.VNPay, err = vnpay.NewClient(
		cfg.VNPay.Merchant(),
		vnpay.WithHTTPClient(&http.Client{Timeout: cfg.VNPay.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init vnpay client: %w", err)
	}

	// ========================================
	// STEP 5: REPOSITORIES / SERVICES / HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.CallbackLogRepo = paymentRepo.NewCallbackLogRepository(pool)
}

func (c *Container) initServices() {
	c.OrderService = orderService.NewOrderService(c.OrderRepo)
	c.PaymentService = paymentService.NewPaymentService(
		c.OrderRepo,
		c.CallbackLogRepo,
		c.Cache,
		c.VNPay,
	)
}

func (c *Container) initHandlers() {
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService, c.Config.VNPay.FrontendReturnURL)
	c.ReconcilePendingHandler = paymentJob.NewReconcilePendingHandler(
		c.PaymentService,
		c.Config.Job.PaymentTimeout,
		c.Config.Job.ReconcileLimit,
	)
}

// AsynqRedisOpt dùng chung Redis config cho asynq server/scheduler
func (c *Container) AsynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		}
	}

	log.Info().Msg("✅ Container cleanup completed")
}
