package provider

import (
	"github.com/creative-products/internal/authz"
	"github.com/creative-products/internal/cache"
	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/queue"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/service"
	"github.com/creative-products/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       *storage.Store

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	ProductRepo     repository.ProductRepository
	OrderRepo       repository.OrderRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	DeliveryRepo    repository.DeliveryRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	CaptchaService  *service.CaptchaService
	ProductService  *service.ProductService
	CouponService   *service.CouponService
	DeliveryService *service.DeliveryService
	OrderService    *service.OrderService
	PaymentService  *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	store, err := storage.NewStore(storage.Options{
		Dir:              cfg.Storage.Dir,
		SignSecret:       cfg.Storage.SignSecret,
		SignedTTLSeconds: cfg.Storage.SignedTTLSeconds,
		BaseURL:          cfg.App.BaseURL,
	})
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "error", err)
		panic(err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       store,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.DeliveryRepo = repository.NewDeliveryRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.DeliveryService = service.NewDeliveryService(c.Config, c.DeliveryRepo, c.Store)
	c.OrderService = service.NewOrderService(c.Config, models.DB, c.OrderRepo, c.DeliveryService)
	c.PaymentService = service.NewPaymentService(
		c.Config,
		models.DB,
		c.OrderRepo,
		c.ProductService,
		c.CouponService,
		c.OrderService,
		c.QueueClient,
	)
}
