package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ordercore"

// 结果标签取值
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Registry 业务指标集合，nil 接收者上的调用均为空操作
type Registry struct {
	checkoutTotal    *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	checkoutItems    prometheus.Histogram
	transitions      *prometheus.CounterVec
	cartMutations    *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// New 在给定 registerer 上注册业务指标
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		return &Registry{}
	}
	r := &Registry{
		checkoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Duration of the checkout transaction in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		checkoutItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_items",
			Help:      "Number of order lines per successful checkout.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions by source, target and outcome.",
		}, []string{"from", "to", "outcome"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_notifications_total",
			Help:      "Order status notifications by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.checkoutTotal, r.checkoutDuration, r.checkoutItems, r.transitions, r.cartMutations, r.notifications)
	return r
}

// ObserveCheckout 记录一次结算
func (r *Registry) ObserveCheckout(err error, lines int, duration time.Duration) {
	if r == nil || r.checkoutTotal == nil {
		return
	}
	r.checkoutTotal.WithLabelValues(outcome(err)).Inc()
	r.checkoutDuration.Observe(duration.Seconds())
	if err == nil && lines > 0 {
		r.checkoutItems.Observe(float64(lines))
	}
}

// ObserveTransition 记录一次订单状态变更
func (r *Registry) ObserveTransition(from, to string, err error) {
	if r == nil || r.transitions == nil {
		return
	}
	r.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), outcome(err)).Inc()
}

// ObserveCartMutation 记录一次购物车变更
func (r *Registry) ObserveCartMutation(operation string, err error) {
	if r == nil || r.cartMutations == nil {
		return
	}
	r.cartMutations.WithLabelValues(normalizeLabel(operation), outcome(err)).Inc()
}

// ObserveNotification 记录一次状态通知发送
func (r *Registry) ObserveNotification(err error) {
	if r == nil || r.notifications == nil {
		return
	}
	r.notifications.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
