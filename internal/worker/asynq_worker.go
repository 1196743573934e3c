package worker

import (
	"context"
	"fmt"

	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/queue"

	"github.com/hibiken/asynq"
)

// StatusNotifyHandler 订单状态通知处理器
type StatusNotifyHandler interface {
	HandleStatusNotify(ctx context.Context, payload queue.OrderStatusNotifyPayload) error
}

// Consumer 异步任务消费者
type Consumer struct {
	notifications StatusNotifyHandler
}

// NewConsumer 创建消费者
func NewConsumer(notifications StatusNotifyHandler) *Consumer {
	return &Consumer{notifications: notifications}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusNotify, c.handleOrderStatusNotify)
}

func (c *Consumer) handleOrderStatusNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.notifications == nil {
		logger.Debugw("worker_order_status_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderStatusNotifyPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_status_notify_invalid_payload", "error", err)
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	}
	if err := c.notifications.HandleStatusNotify(ctx, payload); err != nil {
		logger.Warnw("worker_order_status_notify_failed",
			"order_id", payload.OrderID,
			"status", payload.Status,
			"error", err,
		)
		return err
	}
	return nil
}
