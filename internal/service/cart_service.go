package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxUnitPrice price 列为 decimal(10,2)
var maxUnitPrice = decimal.RequireFromString(constants.MaxUnitPriceText)

// 与 cart_items 列宽一致
const (
	maxProductIDLength   = 100
	maxProductNameLength = 500
)

// CartItemView 购物车项详情（用于响应）
type CartItemView struct {
	models.CartItem
	Subtotal models.Money `json:"subtotal"`
}

// CartView 购物车视图，合计字段均为读取时派生
type CartView struct {
	CartID        uint           `json:"cart_id"`
	UserID        uint           `json:"user_id"`
	Items         []CartItemView `json:"items"`
	TotalItems    int            `json:"total_items"`
	TotalQuantity int            `json:"total_quantity"`
	TotalAmount   models.Money   `json:"total_amount"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// AddToCartInput 加入购物车输入
type AddToCartInput struct {
	ProductID    string
	ProductName  string
	ProductImage string
	UnitPrice    models.Money
	Quantity     int
	Marketplace  string
}

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	metrics  *metrics.Registry
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, registry *metrics.Registry) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		metrics:  registry,
	}
}

// GetCart 获取用户购物车，不存在时创建空购物车
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, invalidInput("user id is required")
	}
	var view *CartView
	err := runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := loadOrCreateCart(repo, userID, false)
		if err != nil {
			return err
		}
		view, err = buildCartView(repo, cart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddToCart 加入购物车
// 同一 (商品, 平台) 已存在时仅累加数量，保留首次加入时的价格与名称
func (s *CartService) AddToCart(ctx context.Context, userID uint, input AddToCartInput) (*CartView, error) {
	normalized, err := normalizeAddToCartInput(userID, input)
	if err != nil {
		s.metrics.ObserveCartMutation("add", err)
		return nil, err
	}

	var view *CartView
	err = runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := loadOrCreateCart(repo, userID, true)
		if err != nil {
			return err
		}
		now := time.Now()
		existing, err := repo.FindItem(cart.ID, normalized.ProductID, normalized.Marketplace)
		if err != nil {
			return err
		}
		if existing != nil {
			merged := existing.Quantity + normalized.Quantity
			if merged > constants.MaxCartItemQuantity {
				return invalidInput("quantity must be <= %d, merged quantity would be %d", constants.MaxCartItemQuantity, merged)
			}
			if err := repo.UpdateItemQuantity(existing.ID, merged, now); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:       cart.ID,
				ProductID:    normalized.ProductID,
				ProductName:  normalized.ProductName,
				ProductImage: normalized.ProductImage,
				UnitPrice:    normalized.UnitPrice,
				Quantity:     normalized.Quantity,
				Marketplace:  normalized.Marketplace,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := repo.CreateItem(item); err != nil {
				return err
			}
		}
		if err := repo.Touch(cart.ID, now); err != nil {
			return err
		}
		view, err = buildCartView(repo, cart)
		return err
	})
	s.metrics.ObserveCartMutation("add", err)
	if err != nil {
		logCartFailure("cart_add_failed", userID, err)
		return nil, err
	}
	logger.Debugw("cart_item_added",
		"user_id", userID,
		"product_id", normalized.ProductID,
		"marketplace", normalized.Marketplace,
		"quantity", normalized.Quantity,
	)
	return view, nil
}

// UpdateItemQuantity 修改购物车项数量，数量 <= 0 时删除该项
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*CartView, error) {
	if userID == 0 || itemID == 0 {
		return nil, invalidInput("user id and item id are required")
	}
	if quantity > constants.MaxCartItemQuantity {
		err := invalidInput("quantity must be <= %d, got %d", constants.MaxCartItemQuantity, quantity)
		s.metrics.ObserveCartMutation("update", err)
		return nil, err
	}
	var view *CartView
	err := runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := repo.GetByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartItemNotFound
		}
		item, err := repo.GetItem(cart.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}
		now := time.Now()
		if quantity <= 0 {
			if _, err := repo.DeleteItem(cart.ID, item.ID); err != nil {
				return err
			}
		} else if err := repo.UpdateItemQuantity(item.ID, quantity, now); err != nil {
			return err
		}
		if err := repo.Touch(cart.ID, now); err != nil {
			return err
		}
		view, err = buildCartView(repo, cart)
		return err
	})
	s.metrics.ObserveCartMutation("update", err)
	if err != nil {
		logCartFailure("cart_update_failed", userID, err)
		return nil, err
	}
	return view, nil
}

// RemoveItem 删除购物车项，重复删除返回 ErrCartItemNotFound
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) (*CartView, error) {
	if userID == 0 || itemID == 0 {
		return nil, invalidInput("user id and item id are required")
	}
	var view *CartView
	err := runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := repo.GetByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartItemNotFound
		}
		affected, err := repo.DeleteItem(cart.ID, itemID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCartItemNotFound
		}
		if err := repo.Touch(cart.ID, time.Now()); err != nil {
			return err
		}
		view, err = buildCartView(repo, cart)
		return err
	})
	s.metrics.ObserveCartMutation("remove", err)
	if err != nil {
		logCartFailure("cart_remove_failed", userID, err)
		return nil, err
	}
	return view, nil
}

// ClearCart 清空购物车，空购物车为空操作
func (s *CartService) ClearCart(ctx context.Context, userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, invalidInput("user id is required")
	}
	var view *CartView
	err := runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)
		cart, err := loadOrCreateCart(repo, userID, true)
		if err != nil {
			return err
		}
		if err := repo.ClearItems(cart.ID); err != nil {
			return err
		}
		view, err = buildCartView(repo, cart)
		return err
	})
	s.metrics.ObserveCartMutation("clear", err)
	if err != nil {
		logCartFailure("cart_clear_failed", userID, err)
		return nil, err
	}
	return view, nil
}

// loadOrCreateCart 读取购物车，不存在时创建；并发创建以先写入者为准
func loadOrCreateCart(repo repository.CartRepository, userID uint, lock bool) (*models.Cart, error) {
	get := repo.GetByUserID
	if lock {
		get = repo.GetByUserIDForUpdate
	}
	cart, err := get(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	if err := repo.Create(&models.Cart{UserID: userID}); err != nil {
		return nil, err
	}
	cart, err = get(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func buildCartView(repo repository.CartRepository, cart *models.Cart) (*CartView, error) {
	items, err := repo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	view := &CartView{
		CartID:    cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range items {
		subtotal := item.Subtotal()
		view.Items = append(view.Items, CartItemView{CartItem: item, Subtotal: subtotal})
		view.TotalQuantity += item.Quantity
		view.TotalAmount = view.TotalAmount.Add(subtotal)
	}
	view.TotalItems = len(view.Items)
	return view, nil
}

func normalizeAddToCartInput(userID uint, input AddToCartInput) (AddToCartInput, error) {
	if userID == 0 {
		return input, invalidInput("user id is required")
	}
	input.ProductID = strings.TrimSpace(input.ProductID)
	input.ProductName = strings.TrimSpace(input.ProductName)
	input.ProductImage = strings.TrimSpace(input.ProductImage)
	if input.ProductID == "" {
		return input, invalidInput("product id is required")
	}
	if input.ProductName == "" {
		return input, invalidInput("product name is required")
	}
	if utf8.RuneCountInString(input.ProductID) > maxProductIDLength {
		return input, invalidInput("product id must be at most %d characters", maxProductIDLength)
	}
	if utf8.RuneCountInString(input.ProductName) > maxProductNameLength {
		return input, invalidInput("product name must be at most %d characters", maxProductNameLength)
	}
	if input.Quantity < 1 || input.Quantity > constants.MaxCartItemQuantity {
		return input, invalidInput("quantity must be between 1 and %d, got %d", constants.MaxCartItemQuantity, input.Quantity)
	}
	price := input.UnitPrice.Decimal
	if !price.IsPositive() {
		return input, invalidInput("price must be > 0")
	}
	if !price.Equal(price.Round(2)) {
		return input, invalidInput("price %s has more than 2 decimal places", price.String())
	}
	if price.GreaterThan(maxUnitPrice) {
		return input, invalidInput("price must be <= %s", constants.MaxUnitPriceText)
	}
	input.UnitPrice = models.NewMoneyFromDecimal(price)
	marketplace, ok := ParseMarketplace(input.Marketplace)
	if !ok {
		return input, invalidInput("unknown marketplace %q", input.Marketplace)
	}
	input.Marketplace = marketplace
	return input, nil
}

// ParseMarketplace 解析来源平台，大小写不敏感
func ParseMarketplace(raw string) (string, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case constants.MarketplaceAliExpress, constants.MarketplaceAlibaba1688:
		return value, true
	default:
		return "", false
	}
}

func logCartFailure(event string, userID uint, err error) {
	if IsRetryable(err) {
		logger.Warnw(event, "user_id", userID, "error", err)
	}
}
