package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"

	"gorm.io/gorm"
)

// CheckoutInput 结算输入
type CheckoutInput struct {
	ShippingAddress string
	Phone           string
	Note            string
}

// CheckoutService 购物车结算服务
type CheckoutService struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	notifier    *OrderNotifier
	metrics     *metrics.Registry
	nextOrderNo func() (string, error)
	maxAttempts int
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository, notifier *OrderNotifier, registry *metrics.Registry, cfg config.CheckoutConfig) *CheckoutService {
	maxAttempts := cfg.OrderNoMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = constants.DefaultOrderNoMaxAttempt
	}
	return &CheckoutService{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		notifier:    notifier,
		metrics:     registry,
		nextOrderNo: newOrderNoGenerator(cfg.OrderNoPrefix),
		maxAttempts: maxAttempts,
	}
}

// Checkout 将购物车转为待确认订单
// 读取购物车、生成订单号、写入订单与订单项、清空购物车在同一事务内完成，任一步失败整体回滚
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*models.Order, error) {
	start := time.Now()
	normalized, err := normalizeCheckoutInput(userID, input)
	if err != nil {
		s.metrics.ObserveCheckout(err, 0, time.Since(start))
		return nil, err
	}

	var order *models.Order
	err = runInTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		cart, err := cartRepo.GetByUserIDForUpdate(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrEmptyCart
		}
		items, err := cartRepo.ListItems(cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		orderNo, err := s.allocateOrderNo(orderRepo)
		if err != nil {
			return err
		}

		now := time.Now()
		created := &models.Order{
			OrderNo:         orderNo,
			UserID:          userID,
			Status:          constants.OrderStatusPending,
			ShippingAddress: normalized.ShippingAddress,
			Phone:           normalized.Phone,
			Note:            normalized.Note,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := orderRepo.Create(created, snapshotCartItems(items, now)); err != nil {
			return err
		}
		if err := cartRepo.ClearItems(cart.ID); err != nil {
			return err
		}
		if err := cartRepo.Touch(cart.ID, now); err != nil {
			return err
		}
		created.RecomputeTotal()
		order = created
		return nil
	})

	lines := 0
	if order != nil {
		lines = len(order.Items)
	}
	s.metrics.ObserveCheckout(err, lines, time.Since(start))
	if err != nil {
		if IsRetryable(err) {
			logger.Warnw("checkout_failed", "user_id", userID, "error", err)
		}
		return nil, err
	}

	logger.Infow("checkout_completed",
		"user_id", userID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"items", lines,
		"total_amount", order.TotalAmount.String(),
	)
	s.notifier.Notify(ctx, order, "")
	return order, nil
}

// allocateOrderNo 生成未被占用的订单号，多次碰撞后返回 ErrConflict
func (s *CheckoutService) allocateOrderNo(orderRepo repository.OrderRepository) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate, err := s.nextOrderNo()
		if err != nil {
			logger.Errorw("checkout_order_no_generate_failed", "attempt", attempt, "error", err)
			return "", err
		}
		exists, err := orderRepo.ExistsByOrderNo(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		logger.Debugw("checkout_order_no_collision", "order_no", candidate, "attempt", attempt)
	}
	return "", fmt.Errorf("%w: order number still taken after %d attempts", ErrConflict, s.maxAttempts)
}

// snapshotCartItems 复制购物车项为订单项，之后商品价格变化不影响订单
func snapshotCartItems(items []models.CartItem, now time.Time) []models.OrderItem {
	result := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, models.OrderItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			Marketplace:  item.Marketplace,
			CreatedAt:    now,
		})
	}
	return result
}

func normalizeCheckoutInput(userID uint, input CheckoutInput) (CheckoutInput, error) {
	if userID == 0 {
		return input, invalidInput("user id is required")
	}
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Note = strings.TrimSpace(input.Note)
	if input.ShippingAddress == "" {
		return input, invalidInput("shipping address is required")
	}
	if input.Phone == "" {
		return input, invalidInput("phone is required")
	}
	return input, nil
}
