package di

import (
	"github.com/terrep263/lakedirectory-sub002/internal/handler"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/config"
	"github.com/terrep263/lakedirectory-sub002/pkg/database"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/redis"
)

// Container holds all dependencies for the marketplace API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	CountyRepo     repository.CountyRepository
	BusinessRepo   repository.BusinessRepository
	DealRepo       repository.DealRepository
	VoucherRepo    repository.VoucherRepository
	PurchaseRepo   repository.PurchaseRepository
	ReviewTaskRepo repository.ReviewTaskRepository

	// Services
	CountyService     service.CountyService
	InventoryService  service.InventoryService
	DealService       service.DealService
	PurchaseService   service.PurchaseService
	RedemptionService service.RedemptionService
	ReviewTaskService service.ReviewTaskService

	// Handlers
	Handlers *handler.Handlers
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *redis.Client
	Observer    service.PurchaseObserver
	AuditLogger *middleware.AuditLogger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	pool := cfg.DB.Pool()
	c.CountyRepo = repository.NewPostgresCountyRepository(pool)
	c.BusinessRepo = repository.NewPostgresBusinessRepository(pool)
	c.DealRepo = repository.NewPostgresDealRepository(pool)
	c.VoucherRepo = repository.NewPostgresVoucherRepository(pool)
	c.PurchaseRepo = repository.NewPostgresPurchaseRepository(pool)
	c.ReviewTaskRepo = repository.NewPostgresReviewTaskRepository(pool)

	// Initialize services
	c.CountyService = service.NewCountyService(c.CountyRepo, c.BusinessRepo)
	c.InventoryService = service.NewInventoryService(c.DealRepo, c.VoucherRepo, c.CountyService)
	c.DealService = service.NewDealService(c.DealRepo, c.BusinessRepo, c.InventoryService)
	c.PurchaseService = service.NewPurchaseService(
		c.PurchaseRepo,
		c.DealRepo,
		c.VoucherRepo,
		cfg.Observer,
		cfg.Config.Purchase.TransactionTimeout,
	)
	c.RedemptionService = service.NewRedemptionService(c.VoucherRepo)
	c.ReviewTaskService = service.NewReviewTaskService(c.ReviewTaskRepo)

	// Initialize handlers
	c.Handlers = &handler.Handlers{
		Health:      handler.NewHealthHandler(c.DB, c.Redis),
		County:      handler.NewCountyHandler(c.CountyService),
		Deal:        handler.NewDealHandler(c.DealService),
		Purchase:    handler.NewPurchaseHandler(c.PurchaseService),
		Redemption:  handler.NewRedemptionHandler(c.RedemptionService),
		Inventory:   handler.NewInventoryHandler(c.InventoryService),
		ReviewTask:  handler.NewReviewTaskHandler(c.ReviewTaskService),
		CountyMW:    handler.CountyMiddleware(c.CountyService),
		JWTSecret:   cfg.Config.JWT.Secret,
		AuditLogger: cfg.AuditLogger,
	}

	return c
}
