package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/identity"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo repository.OrderRepository
	notifier  *OrderNotifier
	metrics   *metrics.Registry
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, notifier *OrderNotifier, registry *metrics.Registry) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		metrics:   registry,
	}
}

// AdminOrderQuery 管理端订单筛选条件
type AdminOrderQuery struct {
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// GetOrderDetail 获取订单详情，仅本人或高权限角色可见
func (s *OrderService) GetOrderDetail(ctx context.Context, who identity.Context, orderID uint) (*models.Order, error) {
	if who == nil {
		return nil, ErrForbidden
	}
	if orderID == 0 {
		return nil, invalidInput("order id is required")
	}
	repo, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	order, err := repo.GetByID(orderID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !identity.CanAccess(who, order.UserID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// GetOrderByNumber 按订单号获取订单
func (s *OrderService) GetOrderByNumber(ctx context.Context, who identity.Context, orderNo string) (*models.Order, error) {
	if who == nil {
		return nil, ErrForbidden
	}
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, invalidInput("order number is required")
	}
	repo, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	order, err := repo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !identity.CanAccess(who, order.UserID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListUserOrders 分页获取用户订单，按创建时间倒序
func (s *OrderService) ListUserOrders(ctx context.Context, who identity.Context, userID uint, page PageRequest) (*OrderPage, error) {
	if who == nil {
		return nil, ErrForbidden
	}
	if userID == 0 {
		return nil, invalidInput("user id is required")
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if !identity.CanAccess(who, userID) {
		return nil, ErrForbidden
	}
	repo, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	orders, total, err := repo.ListByUser(repository.OrderListFilter{
		UserID:    userID,
		PageIndex: page.PageIndex,
		PageSize:  page.PageSize,
	})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return newOrderPage(orders, page, total), nil
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(ctx context.Context, who identity.Context, query AdminOrderQuery, page PageRequest) (*OrderPage, error) {
	if who == nil || !who.HasElevatedRole() {
		return nil, ErrForbidden
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	status := ""
	if strings.TrimSpace(query.Status) != "" {
		parsed, ok := ParseOrderStatus(query.Status)
		if !ok {
			return nil, invalidInput("unknown order status %q", query.Status)
		}
		status = parsed
	}
	repo, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	orders, total, err := repo.ListAdmin(repository.OrderListFilter{
		PageIndex:   page.PageIndex,
		PageSize:    page.PageSize,
		UserID:      query.UserID,
		Status:      status,
		OrderNo:     strings.TrimSpace(query.OrderNo),
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
	})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return newOrderPage(orders, page, total), nil
}

// CancelOrder 取消订单，仅 PENDING 状态可取消
func (s *OrderService) CancelOrder(ctx context.Context, who identity.Context, orderID uint) (*models.Order, error) {
	if who == nil {
		return nil, ErrForbidden
	}
	if orderID == 0 {
		return nil, invalidInput("order id is required")
	}
	return s.transition(ctx, who, orderID, constants.OrderStatusCancelled, func(from string) bool {
		return from == constants.OrderStatusPending
	})
}

// UpdateOrderStatus 高权限角色推进订单状态，每次只能沿状态机前进一步
func (s *OrderService) UpdateOrderStatus(ctx context.Context, who identity.Context, orderID uint, newStatus string) (*models.Order, error) {
	if who == nil || !who.HasElevatedRole() {
		return nil, ErrForbidden
	}
	if orderID == 0 {
		return nil, invalidInput("order id is required")
	}
	target, ok := ParseOrderStatus(newStatus)
	if !ok {
		return nil, invalidInput("unknown order status %q", newStatus)
	}
	return s.transition(ctx, who, orderID, target, func(from string) bool {
		return isTransitionAllowed(from, target)
	})
}

// transition 加锁读取订单、校验权限与状态后按当前状态条件更新
func (s *OrderService) transition(ctx context.Context, who identity.Context, orderID uint, target string, allowed func(from string) bool) (*models.Order, error) {
	var fromStatus string
	err := runInTx(ctx, func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		locked, err := repo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if !identity.CanAccess(who, locked.UserID) {
			return ErrForbidden
		}
		fromStatus = locked.Status
		if !allowed(locked.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, locked.Status, target)
		}
		affected, err := repo.UpdateStatusIfCurrent(locked.ID, locked.Status, target, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: order %d status changed concurrently", ErrConflict, locked.ID)
		}
		return nil
	})
	s.metrics.ObserveTransition(fromStatus, target, err)
	if err != nil {
		return nil, err
	}

	logger.Infow("order_status_updated",
		"order_id", orderID,
		"from", fromStatus,
		"to", target,
		"operator_id", who.PrincipalID(),
	)

	repo, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	order, err := repo.GetByID(orderID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.notifier.Notify(ctx, order, fromStatus)
	return order, nil
}

func (s *OrderService) session(ctx context.Context) (repository.OrderRepository, error) {
	db, err := dbSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.WithTx(db), nil
}
