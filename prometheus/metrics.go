package prometheus

import (
	"sync"
	"time"

	"storefront-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogLoadsCounter  *prometheus.CounterVec
	CatalogLoadDuration  prometheus.Histogram
	CatalogProductsGauge prometheus.Gauge
	CatalogCategoryGauge prometheus.Gauge
	ViewChangesCounter   *prometheus.CounterVec

	// Search metrics
	SearchQueriesCounter *prometheus.CounterVec

	// Cart metrics
	CartOperationsCounter *prometheus.CounterVec
	CartItemsGauge        prometheus.Gauge
	CheckoutCounter       *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the metrics under the configured prefix. Only the first call has an effect.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		register(config.Metrics.Prefix, promauto.With(prometheus.DefaultRegisterer))
	})
}

func register(prefix string, factory promauto.Factory) {
	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	CatalogLoadsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_loads_total",
			Help: "Total number of catalog loads by outcome",
		},
		[]string{"outcome"},
	)

	CatalogLoadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_catalog_load_duration_seconds",
			Help:    "Duration of catalog loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CatalogProductsGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_catalog_products",
			Help: "Number of products in the loaded catalog",
		},
	)

	CatalogCategoryGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_catalog_categories",
			Help: "Number of categories in the loaded catalog",
		},
	)

	ViewChangesCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_view_changes_total",
			Help: "Total number of filter, sort and load-more actions",
		},
		[]string{"action"},
	)

	SearchQueriesCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_search_queries_total",
			Help: "Total number of search queries by status",
		},
		[]string{"status"},
	)

	CartOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_cart_operations_total",
			Help: "Total number of cart operations",
		},
		[]string{"operation", "result"},
	)

	CartItemsGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_cart_items",
			Help: "Current number of units in the cart",
		},
	)

	CheckoutCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checkouts_total",
			Help: "Total number of checkout attempts",
		},
		[]string{"result"},
	)
}

// TrackCatalogLoad returns a function that records the outcome and duration of a catalog load
func TrackCatalogLoad() func(err error, products, categories int) {
	start := time.Now()
	return func(err error, products, categories int) {
		if CatalogLoadsCounter == nil {
			return
		}
		CatalogLoadDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			CatalogLoadsCounter.WithLabelValues("failure").Inc()
			return
		}
		CatalogLoadsCounter.WithLabelValues("success").Inc()
		CatalogProductsGauge.Set(float64(products))
		CatalogCategoryGauge.Set(float64(categories))
	}
}

// RecordViewChange increments the counter for browsing actions
func RecordViewChange(action string) {
	if ViewChangesCounter != nil {
		ViewChangesCounter.WithLabelValues(action).Inc()
	}
}

// RecordSearch increments the counter for search queries
func RecordSearch(status string) {
	if SearchQueriesCounter != nil {
		SearchQueriesCounter.WithLabelValues(status).Inc()
	}
}

// RecordCartOperation increments the counter for cart operations and updates the unit gauge
func RecordCartOperation(operation, result string, units int) {
	if CartOperationsCounter == nil {
		return
	}
	CartOperationsCounter.WithLabelValues(operation, result).Inc()
	CartItemsGauge.Set(float64(units))
}

// RecordCheckout increments the counter for checkouts
func RecordCheckout(result string) {
	if CheckoutCounter != nil {
		CheckoutCounter.WithLabelValues(result).Inc()
	}
}
