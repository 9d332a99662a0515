package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Join outcomes reported by MarketplaceMetrics.ObserveJoin.
const (
	JoinResultJoined   = "joined"
	JoinResultRejected = "rejected"
	JoinResultConflict = "conflict"
)

// MarketplaceMetrics tracks business counters for group orders and checkout.
type MarketplaceMetrics struct {
	joins        *prometheus.CounterVec
	completions  prometheus.Counter
	ordersPlaced prometheus.Counter
	orderStatus  *prometheus.CounterVec
}

// NewMarketplaceMetrics registers the marketplace counters. A nil registerer yields a no-op recorder.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	m := &MarketplaceMetrics{
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_order_joins_total",
			Help:      "Group order join attempts by result.",
		}, []string{"result"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_order_completions_total",
			Help:      "Group orders that reached their target quantity.",
		}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Supplier orders created by checkout.",
		}),
		orderStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "Order status transitions by target status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.joins, m.completions, m.ordersPlaced, m.orderStatus)
	return m
}

// ObserveJoin counts a join attempt outcome.
func (m *MarketplaceMetrics) ObserveJoin(result string) {
	if m == nil || m.joins == nil {
		return
	}
	m.joins.WithLabelValues(result).Inc()
}

// IncCompletion counts a group order crossing its target.
func (m *MarketplaceMetrics) IncCompletion() {
	if m == nil || m.completions == nil {
		return
	}
	m.completions.Inc()
}

// AddOrdersPlaced counts orders created in one checkout.
func (m *MarketplaceMetrics) AddOrdersPlaced(n int) {
	if m == nil || m.ordersPlaced == nil || n <= 0 {
		return
	}
	m.ordersPlaced.Add(float64(n))
}

// ObserveOrderStatus counts a transition into status.
func (m *MarketplaceMetrics) ObserveOrderStatus(status string) {
	if m == nil || m.orderStatus == nil {
		return
	}
	m.orderStatus.WithLabelValues(status).Inc()
}
