package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	CartMutations *prometheus.CounterVec
	OrdersPlaced  prometheus.Counter
}

func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "joycity",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "joycity",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"route"})
	cart := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "joycity",
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "joycity",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders placed at checkout.",
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(requests, latency, cart, orders)

	return &Metrics{
		registry:      reg,
		Requests:      requests,
		LatencyMS:     latency,
		CartMutations: cart,
		OrdersPlaced:  orders,
	}
}

// CartMutation counts one add, update, remove or clear.
func (m *Metrics) CartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

// OrderPlaced counts one successful checkout.
func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, status string, durationMS float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(route, status).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(durationMS)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
