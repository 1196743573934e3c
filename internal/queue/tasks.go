package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aptechmall/ordercore/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusNotify 订单状态通知任务
	TaskOrderStatusNotify = constants.TaskOrderStatusNotify
)

// OrderStatusNotifyPayload 订单状态通知任务载荷
type OrderStatusNotifyPayload struct {
	OrderID    uint   `json:"order_id"`
	OrderNo    string `json:"order_no"`
	FromStatus string `json:"from_status,omitempty"`
	Status     string `json:"status"`
}

// NewOrderStatusNotifyTask 创建订单状态通知任务
func NewOrderStatusNotifyTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusNotify, body), nil
}

// ParseOrderStatusNotifyPayload 解析任务载荷
func ParseOrderStatusNotifyPayload(body []byte) (OrderStatusNotifyPayload, error) {
	var payload OrderStatusNotifyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", TaskOrderStatusNotify, err)
	}
	payload.Status = strings.TrimSpace(payload.Status)
	if payload.OrderID == 0 || payload.Status == "" {
		return payload, fmt.Errorf("invalid %s payload: order_id=%d status=%q", TaskOrderStatusNotify, payload.OrderID, payload.Status)
	}
	return payload, nil
}
