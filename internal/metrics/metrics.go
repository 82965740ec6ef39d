package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/pricing"
)

// Metrics holds the service's prometheus collectors
type Metrics struct {
	Registry          *prometheus.Registry
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	OrdersCreated     *prometheus.CounterVec
	OrderRevenue      prometheus.Counter
	GSTCollected      *prometheus.CounterVec
	SettingsFallbacks prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_created_total",
			Help:      "Orders created, by GST rate and whether shipping was free.",
		}, []string{"gst_percentage", "free_shipping"}),
		OrderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_revenue_total",
			Help:      "Sum of order total prices.",
		}),
		GSTCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "gst_collected_total",
			Help:      "GST amount on created orders, by rate.",
		}, []string{"gst_percentage"}),
		SettingsFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "shipping_settings_fallbacks_total",
			Help:      "Checkouts priced with the built-in shipping defaults because settings could not be read.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersCreated,
		m.OrderRevenue,
		m.GSTCollected,
		m.SettingsFallbacks,
	)
	return m
}

// ObserveOrder records a created order. Safe to call on a nil *Metrics.
func (m *Metrics) ObserveOrder(total decimal.Decimal, gst pricing.GSTBreakdown, shipping pricing.ShippingDecision) {
	if m == nil {
		return
	}
	rate := strconv.Itoa(gst.GSTPercentage)
	free := "false"
	if shipping.IsFreeShipping {
		free = "true"
	}
	m.OrdersCreated.WithLabelValues(rate, free).Inc()
	m.OrderRevenue.Add(total.InexactFloat64())
	m.GSTCollected.WithLabelValues(rate).Add(gst.GSTAmount.InexactFloat64())
}

// ObserveSettingsFallback records a checkout priced with default settings. Safe on nil.
func (m *Metrics) ObserveSettingsFallback() {
	if m == nil {
		return
	}
	m.SettingsFallbacks.Inc()
}

// ObserveRequest records one served HTTP request. Safe on nil.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
