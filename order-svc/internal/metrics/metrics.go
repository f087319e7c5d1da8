package metrics

import (
	"net/http"
	"strconv"
	"time"

	"restaurant-app/order-svc/internal/domain"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restaurant"

type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
	CartUpdates      prometheus.Counter
	CartItems        prometheus.Histogram
	CheckoutOutcomes *prometheus.CounterVec
}

// New registers the service collectors on a private registry.
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	cartUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "cart_updates_total",
		Help:      "Total number of cart mutations.",
	})
	cartItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "cart_items",
		Help:      "Item count of a cart after each mutation.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "checkout_outcomes_total",
		Help:      "Checkout state changes by phase and error kind.",
	}, []string{"phase", "error_kind"})

	registry.MustRegister(requests, latency, cartUpdates, cartItems, outcomes)
	return &Metrics{
		registry:         registry,
		Requests:         requests,
		LatencyMS:        latency,
		CartUpdates:      cartUpdates,
		CartItems:        cartItems,
		CheckoutOutcomes: outcomes,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CartUpdated has the cart observer signature.
func (m *Metrics) CartUpdated(snapshot domain.CartSnapshot) {
	m.CartUpdates.Inc()
	m.CartItems.Observe(float64(snapshot.Totals.Items))
}

// CheckoutChanged has the checkout observer signature.
func (m *Metrics) CheckoutChanged(outcome domain.Outcome) {
	m.CheckoutOutcomes.WithLabelValues(string(outcome.Phase), string(outcome.Kind)).Inc()
}

// Middleware records request counts and latency per mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(started).Milliseconds()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
