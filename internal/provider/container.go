package provider

import (
	"github.com/aptechmall/ordercore/internal/authz"
	"github.com/aptechmall/ordercore/internal/cache"
	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/queue"
	"github.com/aptechmall/ordercore/internal/repository"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container 依赖注入容器
type Container struct {
	Config          *config.Config
	QueueClient     *queue.Client
	Metrics         *metrics.Registry
	MetricsGatherer prometheus.Gatherer

	// Repositories
	UserRepo  repository.UserRepository
	CartRepo  repository.CartRepository
	OrderRepo repository.OrderRepository

	// Services
	AuthzService             *authz.Service
	TokenService             *service.TokenService
	AuthService              *service.AuthService
	EmailService             *service.EmailService
	CartService              *service.CartService
	CheckoutService          *service.CheckoutService
	OrderService             *service.OrderService
	OrderNotifier            *service.OrderNotifier
	OrderNotificationService *service.OrderNotificationService
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

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initMetrics()
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initMetrics() {
	if !c.Config.Metrics.Enabled {
		c.Metrics = metrics.New(nil)
		return
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(registry)
	c.MetricsGatherer = registry
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
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

	c.TokenService = service.NewTokenService(c.Config.JWT, cache.NewTokenBlacklist())
	c.AuthService = service.NewAuthService(c.UserRepo, c.TokenService, c.Config.JWT, c.Config.Security)
	c.EmailService = service.NewEmailService(&c.Config.Email)

	c.OrderNotifier = service.NewOrderNotifier(c.OrderRepo, c.QueueClient)
	c.CartService = service.NewCartService(c.CartRepo, c.Metrics)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.OrderRepo, c.OrderNotifier, c.Metrics, c.Config.Checkout)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.OrderNotifier, c.Metrics)
	c.OrderNotificationService = service.NewOrderNotificationService(c.OrderRepo, c.EmailService, c.Metrics, c.Config.Email.Locale)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
