package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"

	"github.com/shopspring/decimal"
)

func newTestCartService(t *testing.T) (*CartService, uint) {
	t.Helper()
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "cart_user", constants.RoleCustomer)
	return NewCartService(repository.NewCartRepository(db), nil), user.ID
}

func TestCartServiceGetCartCreatesLazily(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()

	first, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if first.CartID == 0 || first.TotalItems != 0 || first.TotalAmount.String() != "0.00" {
		t.Fatalf("unexpected empty cart view: %+v", first)
	}
	second, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart again failed: %v", err)
	}
	if second.CartID != first.CartID {
		t.Fatalf("cart should be created once, got %d and %d", first.CartID, second.CartID)
	}
}

func TestCartServiceAddMergesSameProduct(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("10.00"),
		Quantity:    2,
		Marketplace: "aliexpress",
	})
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	view, err := svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget Renamed",
		UnitPrice:   money("12.50"),
		Quantity:    3,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if view.TotalItems != 1 {
		t.Fatalf("expected single merged line, got %d", view.TotalItems)
	}
	line := view.Items[0]
	if line.Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", line.Quantity)
	}
	if line.UnitPrice.String() != "10.00" || line.ProductName != "Widget" {
		t.Fatalf("merge should keep first price and name, got %s %s", line.UnitPrice, line.ProductName)
	}
	if view.TotalAmount.String() != "50.00" || view.TotalQuantity != 5 {
		t.Fatalf("unexpected totals: %s %d", view.TotalAmount, view.TotalQuantity)
	}

	// 不同平台视为不同行
	view, err = svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("9.00"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAlibaba1688,
	})
	if err != nil {
		t.Fatalf("add other marketplace failed: %v", err)
	}
	if view.TotalItems != 2 || view.TotalAmount.String() != "59.00" {
		t.Fatalf("unexpected cart after second marketplace: %d %s", view.TotalItems, view.TotalAmount)
	}
}

func TestCartServiceAddRejectsInvalidInput(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()
	valid := AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("1.00"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	}

	cases := map[string]func(in *AddToCartInput){
		"zero_quantity":   func(in *AddToCartInput) { in.Quantity = 0 },
		"zero_price":      func(in *AddToCartInput) { in.UnitPrice = money("0") },
		"negative_price":  func(in *AddToCartInput) { in.UnitPrice = money("-1") },
		"blank_product":   func(in *AddToCartInput) { in.ProductID = "  " },
		"blank_name":      func(in *AddToCartInput) { in.ProductName = "" },
		"bad_marketplace": func(in *AddToCartInput) { in.Marketplace = "EBAY" },
		"huge_quantity":   func(in *AddToCartInput) { in.Quantity = math.MaxInt },
		"over_max_qty":    func(in *AddToCartInput) { in.Quantity = constants.MaxCartItemQuantity + 1 },
		"three_decimals":  func(in *AddToCartInput) { in.UnitPrice = rawMoney("10.999") },
		"price_too_large": func(in *AddToCartInput) { in.UnitPrice = rawMoney("100000000.00") },
		"long_product_id": func(in *AddToCartInput) { in.ProductID = strings.Repeat("p", 101) },
		"long_name":       func(in *AddToCartInput) { in.ProductName = strings.Repeat("n", 501) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := valid
			mutate(&input)
			if _, err := svc.AddToCart(ctx, userID, input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput got %v", err)
			}
		})
	}
	if _, err := svc.AddToCart(ctx, 0, valid); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero user should be invalid, got %v", err)
	}
}

func TestCartServiceUpdateAndRemove(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()

	view, err := svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("2.50"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	itemID := view.Items[0].ID

	view, err = svc.UpdateItemQuantity(ctx, userID, itemID, 4)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if view.Items[0].Quantity != 4 || view.TotalAmount.String() != "10.00" {
		t.Fatalf("unexpected view after update: %+v", view)
	}

	view, err = svc.UpdateItemQuantity(ctx, userID, itemID, 0)
	if err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	if view.TotalItems != 0 {
		t.Fatalf("quantity 0 should remove the item, got %d lines", view.TotalItems)
	}
	if _, err := svc.UpdateItemQuantity(ctx, userID, itemID, 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("update removed item want ErrCartItemNotFound got %v", err)
	}

	view, err = svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P2",
		ProductName: "Gadget",
		UnitPrice:   money("3.00"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("add second failed: %v", err)
	}
	secondID := view.Items[0].ID
	if view, err = svc.UpdateItemQuantity(ctx, userID, secondID, -1); err != nil || view.TotalItems != 0 {
		t.Fatalf("negative quantity should remove item: %+v %v", view, err)
	}

	view, err = svc.AddToCart(ctx, userID, AddToCartInput{
		ProductID:   "P3",
		ProductName: "Gizmo",
		UnitPrice:   money("3.00"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("add third failed: %v", err)
	}
	thirdID := view.Items[0].ID
	if _, err := svc.RemoveItem(ctx, userID, thirdID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, userID, thirdID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove want ErrNotFound got %v", err)
	}
}

func TestCartServiceItemsAreScopedToOwner(t *testing.T) {
	db := setupServiceTestDB(t)
	owner := createTestUser(t, db, "owner", constants.RoleCustomer)
	other := createTestUser(t, db, "other", constants.RoleCustomer)
	svc := NewCartService(repository.NewCartRepository(db), nil)
	ctx := context.Background()

	view, err := svc.AddToCart(ctx, owner.ID, AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("1.00"),
		Quantity:    1,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.GetCart(ctx, other.ID); err != nil {
		t.Fatalf("get other cart failed: %v", err)
	}
	if _, err := svc.RemoveItem(ctx, other.ID, view.Items[0].ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("foreign item remove want ErrCartItemNotFound got %v", err)
	}
}

func TestCartServiceClearCart(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()

	view, err := svc.ClearCart(ctx, userID)
	if err != nil || view.TotalItems != 0 {
		t.Fatalf("clear empty cart should be no-op: %+v %v", view, err)
	}
	for _, productID := range []string{"P1", "P2"} {
		if _, err := svc.AddToCart(ctx, userID, AddToCartInput{
			ProductID:   productID,
			ProductName: productID,
			UnitPrice:   money("1.00"),
			Quantity:    1,
			Marketplace: constants.MarketplaceAliExpress,
		}); err != nil {
			t.Fatalf("add %s failed: %v", productID, err)
		}
	}
	view, err = svc.ClearCart(ctx, userID)
	if err != nil || view.TotalItems != 0 || view.TotalAmount.String() != "0.00" {
		t.Fatalf("clear failed: %+v %v", view, err)
	}
}

func rawMoney(value string) models.Money {
	return models.Money{Decimal: decimal.RequireFromString(value)}
}

func TestCartServiceAcceptsPriceAndQuantityBounds(t *testing.T) {
	svc, userID := newTestCartService(t)
	view, err := svc.AddToCart(context.Background(), userID, AddToCartInput{
		ProductID:   strings.Repeat("p", 100),
		ProductName: strings.Repeat("n", 500),
		UnitPrice:   rawMoney(constants.MaxUnitPriceText),
		Quantity:    constants.MaxCartItemQuantity,
		Marketplace: constants.MarketplaceAliExpress,
	})
	if err != nil {
		t.Fatalf("add at bounds failed: %v", err)
	}
	if view.Items[0].UnitPrice.String() != "99999999.99" || view.TotalQuantity != constants.MaxCartItemQuantity {
		t.Fatalf("unexpected line: %s x %d", view.Items[0].UnitPrice, view.TotalQuantity)
	}
}

func TestCartServiceMergeCannotExceedMaxQuantity(t *testing.T) {
	svc, userID := newTestCartService(t)
	ctx := context.Background()
	input := AddToCartInput{
		ProductID:   "P1",
		ProductName: "Widget",
		UnitPrice:   money("1.00"),
		Quantity:    constants.MaxCartItemQuantity,
		Marketplace: constants.MarketplaceAliExpress,
	}
	if _, err := svc.AddToCart(ctx, userID, input); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	input.Quantity = 1
	if _, err := svc.AddToCart(ctx, userID, input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("merge over max want ErrInvalidInput got %v", err)
	}

	view, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != constants.MaxCartItemQuantity {
		t.Fatalf("rejected merge must leave line unchanged, got %+v", view.Items)
	}
	if _, err := svc.UpdateItemQuantity(ctx, userID, view.Items[0].ID, constants.MaxCartItemQuantity+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("update over max want ErrInvalidInput got %v", err)
	}
	if _, err := svc.UpdateItemQuantity(ctx, userID, view.Items[0].ID, math.MaxInt); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("update with huge quantity want ErrInvalidInput got %v", err)
	}
}

func TestCartServiceConcurrentAddsMergeIntoOneLine(t *testing.T) {
	db := setupServiceTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 内存 sqlite 共享缓存下并发写会返回 table locked，单连接让事务排队
	sqlDB.SetMaxOpenConns(1)
	user := createTestUser(t, db, "concurrent_user", constants.RoleCustomer)
	svc := NewCartService(repository.NewCartRepository(db), nil)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddToCart(context.Background(), user.ID, AddToCartInput{
				ProductID:   "P1",
				ProductName: "Widget",
				UnitPrice:   money("2.00"),
				Quantity:    1,
				Marketplace: constants.MarketplaceAlibaba1688,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add failed: %v", err)
		}
	}

	view, err := svc.GetCart(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if view.TotalItems != 1 || view.TotalQuantity != workers || view.TotalAmount.String() != "16.00" {
		t.Fatalf("want one line with quantity %d, got items=%d quantity=%d total=%s",
			workers, view.TotalItems, view.TotalQuantity, view.TotalAmount)
	}
}
