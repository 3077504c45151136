package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records cart and order activity counters.
type CommerceMetrics struct {
	cartMutations    *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	orderTransitions *prometheus.CounterVec
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created at checkout.",
	})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions by source and target status.",
	}, []string{"from", "to"})
	reg.MustRegister(cartMutations, ordersCreated, orderTransitions)
	return &CommerceMetrics{
		cartMutations:    cartMutations,
		ordersCreated:    ordersCreated,
		orderTransitions: orderTransitions,
	}
}

// IncCartMutation increments the counter for the named cart operation.
func (c *CommerceMetrics) IncCartMutation(op string) {
	if c == nil || c.cartMutations == nil {
		return
	}
	c.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncOrderCreated increments the created-order counter.
func (c *CommerceMetrics) IncOrderCreated() {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.Inc()
}

// IncOrderTransition records a successful status transition.
func (c *CommerceMetrics) IncOrderTransition(from, to string) {
	if c == nil || c.orderTransitions == nil {
		return
	}
	c.orderTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
