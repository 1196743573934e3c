//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.CartItem{},
		&models.Cart{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCartItemIdentityIsUnique(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCartRepository(db)

	cart := &models.Cart{UserID: 1}
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	item := models.CartItem{
		CartID:      cart.ID,
		ProductID:   "pg-sku-1",
		ProductName: "Widget",
		UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	}
	if err := repo.CreateItem(&item); err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	dup := item
	dup.ID = 0
	err := repo.CreateItem(&dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate item want ErrDuplicatedKey got %v", err)
	}
}

func TestPostgresOrderStatusLockAndUpdate(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	order := &models.Order{
		OrderNo:         "AM-PG-001",
		UserID:          1,
		Status:          constants.OrderStatusPending,
		ShippingAddress: "1 Main St",
		Phone:           "13800000000",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	items := []models.OrderItem{{
		ProductID:   "pg-sku-1",
		ProductName: "Widget",
		UnitPrice:   models.NewMoneyFromDecimal(decimal.RequireFromString("12.50")),
		Quantity:    2,
		Marketplace: constants.MarketplaceAlibaba1688,
	}}
	if err := NewOrderRepository(db).Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewOrderRepository(db).WithTx(tx)
		locked, err := repo.GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Status != constants.OrderStatusPending {
			t.Fatalf("unexpected locked order: %+v", locked)
		}
		affected, err := repo.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPending, constants.OrderStatusConfirmed, now)
		if err != nil {
			return err
		}
		if affected != 1 {
			t.Fatalf("update want 1 row got %d", affected)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	loaded, err := NewOrderRepository(db).GetByOrderNo("AM-PG-001")
	if err != nil {
		t.Fatalf("get by order no failed: %v", err)
	}
	if loaded.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want CONFIRMED got %s", loaded.Status)
	}
	if loaded.TotalAmount.String() != "25.00" {
		t.Fatalf("total want 25.00 got %s", loaded.TotalAmount.String())
	}
}
