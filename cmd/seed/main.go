package main

import (
	"context"
	"flag"

	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Email    string
	FullName string
	Role     string
}

type seedCartItem struct {
	ProductID   string
	Name        string
	Price       string
	Quantity    int
	Marketplace string
}

func main() {
	password := flag.String("password", "password123", "演示账号统一密码")
	withCart := flag.Bool("with-cart", true, "为演示顾客预置购物车")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.Debug); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() { _ = models.Close() }()

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}

	users := []seedUser{
		{Username: "admin", Email: "admin@example.com", FullName: "Demo Admin", Role: constants.RoleAdmin},
		{Username: "staff", Email: "staff@example.com", FullName: "Demo Staff", Role: constants.RoleStaff},
		{Username: "customer", Email: "customer@example.com", FullName: "Demo Customer", Role: constants.RoleCustomer},
	}
	userRepo := repository.NewUserRepository(models.DB)
	var customerID uint
	for _, item := range users {
		existing, err := userRepo.GetByUsername(item.Username)
		if err != nil {
			stdLog.Fatalf("Failed to query user %s: %v", item.Username, err)
		}
		if existing == nil {
			existing = &models.User{
				Username:     item.Username,
				Email:        item.Email,
				PasswordHash: string(hash),
				FullName:     item.FullName,
				Address:      "1 Demo Street",
				Phone:        "13800000000",
				Role:         item.Role,
				Status:       constants.UserStatusActive,
			}
			if err := userRepo.Create(existing); err != nil {
				stdLog.Fatalf("Failed to create user %s: %v", item.Username, err)
			}
			logger.Infow("seed_user_created", "username", item.Username, "role", item.Role)
		} else {
			logger.Infow("seed_user_exists", "username", item.Username)
		}
		if item.Role == constants.RoleCustomer {
			customerID = existing.ID
		}
	}

	if !*withCart || customerID == 0 {
		return
	}

	cartService := service.NewCartService(repository.NewCartRepository(models.DB), metrics.New(nil))
	ctx := context.Background()
	items := []seedCartItem{
		{ProductID: "1005006123456789", Name: "USB-C Cable 2m", Price: "3.99", Quantity: 2, Marketplace: constants.MarketplaceAliExpress},
		{ProductID: "660012345678", Name: "Ceramic Mug", Price: "12.50", Quantity: 1, Marketplace: constants.MarketplaceAlibaba1688},
	}
	for _, item := range items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			stdLog.Fatalf("Invalid seed price %s: %v", item.Price, err)
		}
		if _, err := cartService.AddToCart(ctx, customerID, service.AddToCartInput{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			UnitPrice:   models.NewMoneyFromDecimal(price),
			Quantity:    item.Quantity,
			Marketplace: item.Marketplace,
		}); err != nil {
			stdLog.Fatalf("Failed to seed cart item %s: %v", item.ProductID, err)
		}
	}
	logger.Infow("seed_cart_ready", "user_id", customerID, "items", len(items))
}
