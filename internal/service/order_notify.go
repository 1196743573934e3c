package service

import (
	"context"
	"strings"

	"github.com/aptechmall/ordercore/internal/i18n"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/metrics"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/queue"
	"github.com/aptechmall/ordercore/internal/repository"
)

// OrderNotifier 订单状态变更后投递通知任务，投递失败只记录日志
type OrderNotifier struct {
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
}

// NewOrderNotifier 创建通知投递器
func NewOrderNotifier(orderRepo repository.OrderRepository, queueClient *queue.Client) *OrderNotifier {
	return &OrderNotifier{orderRepo: orderRepo, queueClient: queueClient}
}

// Notify 投递订单状态通知
func (n *OrderNotifier) Notify(ctx context.Context, order *models.Order, fromStatus string) {
	if n == nil || order == nil || !n.queueClient.Enabled() {
		return
	}
	repo := n.orderRepo
	if db, err := dbSession(ctx); err == nil && repo != nil {
		repo = repo.WithTx(db)
	}
	payload := queue.OrderStatusNotifyPayload{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		FromStatus: fromStatus,
		Status:     order.Status,
	}
	if _, err := enqueueOrderStatusNotifyIfEligible(repo, n.queueClient, payload); err != nil {
		logger.Warnw("order_enqueue_status_notify_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}

// enqueueOrderStatusNotifyIfEligible 根据订单接收邮箱决定是否入队通知任务。
// 返回值 skipped 表示任务被跳过（例如用户没有邮箱）。
func enqueueOrderStatusNotifyIfEligible(orderRepo repository.OrderRepository, queueClient *queue.Client, payload queue.OrderStatusNotifyPayload) (skipped bool, err error) {
	if queueClient == nil || payload.OrderID == 0 {
		return true, nil
	}
	payload.Status = strings.TrimSpace(payload.Status)
	if orderRepo != nil {
		receiverEmail, lookupErr := orderRepo.ResolveReceiverEmailByOrderID(payload.OrderID)
		if lookupErr == nil && strings.TrimSpace(receiverEmail) == "" {
			return true, nil
		}
	}
	if err := queueClient.EnqueueOrderStatusNotify(payload); err != nil {
		return false, err
	}
	return false, nil
}

// OrderNotificationService 消费通知任务并发送状态邮件
type OrderNotificationService struct {
	orderRepo    repository.OrderRepository
	emailService *EmailService
	metrics      *metrics.Registry
	locale       string
}

// NewOrderNotificationService 创建通知消费服务
func NewOrderNotificationService(orderRepo repository.OrderRepository, emailService *EmailService, registry *metrics.Registry, locale string) *OrderNotificationService {
	return &OrderNotificationService{
		orderRepo:    orderRepo,
		emailService: emailService,
		metrics:      registry,
		locale:       i18n.NormalizeLocale(locale),
	}
}

// HandleStatusNotify 发送订单状态邮件；订单或邮箱缺失时跳过，不重试
func (s *OrderNotificationService) HandleStatusNotify(ctx context.Context, payload queue.OrderStatusNotifyPayload) error {
	db, err := dbSession(ctx)
	if err != nil {
		return err
	}
	repo := s.orderRepo.WithTx(db)
	order, err := repo.GetByID(payload.OrderID)
	if err != nil {
		return wrapStoreError(err)
	}
	if order == nil {
		logger.Warnw("order_status_notify_order_missing", "order_id", payload.OrderID)
		return nil
	}
	receiver, err := repo.ResolveReceiverEmailByOrderID(order.ID)
	if err != nil {
		return wrapStoreError(err)
	}
	if receiver == "" {
		return nil
	}

	err = s.emailService.SendOrderStatusEmail(ctx, receiver, OrderStatusEmailInput{
		OrderNo: order.OrderNo,
		Status:  payload.Status,
		Amount:  order.TotalAmount,
	}, s.locale)
	s.metrics.ObserveNotification(err)
	switch {
	case err == nil:
		logger.Infow("order_status_notify_sent", "order_id", order.ID, "status", payload.Status)
		return nil
	case isPermanentEmailError(err):
		logger.Warnw("order_status_notify_skipped", "order_id", order.ID, "status", payload.Status, "error", err)
		return nil
	default:
		return err
	}
}
