package service

import (
	"strings"

	"github.com/aptechmall/ordercore/internal/constants"
)

// allowedTransitions 订单状态机，仅允许单步前进或在发货前取消
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// ParseOrderStatus 解析订单状态，大小写不敏感
func ParseOrderStatus(raw string) (string, bool) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// isTransitionAllowed 同状态流转不被允许
func isTransitionAllowed(from, to string) bool {
	return allowedTransitions[from][to]
}

// IsTerminalOrderStatus 终态不再有出边
func IsTerminalOrderStatus(status string) bool {
	return len(allowedTransitions[status]) == 0
}

// NextOrderStatuses 返回 from 可流转的目标状态
func NextOrderStatuses(from string) []string {
	order := []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
	}
	next := make([]string, 0, 2)
	for _, status := range order {
		if allowedTransitions[from][status] {
			next = append(next, status)
		}
	}
	return next
}
