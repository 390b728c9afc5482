package prometheus

import (
	"time"

	"github.com/Brunomperetti/catalogo-repuestos/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Import metrics
	ImportsCounter      prometheus.CounterVec
	ImportedRowsCounter prometheus.CounterVec

	// Catalog metrics
	CatalogViewsCounter prometheus.CounterVec

	// Quote metrics
	QuotePdfCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Import metrics
	ImportsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_imports_total",
			Help: "Total number of bulk imports",
		},
		[]string{"kind", "result"},
	)

	ImportedRowsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_imported_rows_total",
			Help: "Total number of product rows written by imports",
		},
		[]string{"outcome"},
	)

	// Catalog metrics
	CatalogViewsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_views_total",
			Help: "Total number of public catalog page views",
		},
		[]string{"slug"},
	)

	// Quote metrics
	QuotePdfCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_quote_pdfs_total",
			Help: "Total number of order quote PDFs generated",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordImport increments the counter for bulk imports
func RecordImport(kind string, result string) {
	ImportsCounter.WithLabelValues(kind, result).Inc()
}

// RecordImportedRows adds to the imported-row counters
func RecordImportedRows(outcome string, n int) {
	ImportedRowsCounter.WithLabelValues(outcome).Add(float64(n))
}

// RecordCatalogView increments the counter for catalog page views
func RecordCatalogView(slug string) {
	CatalogViewsCounter.WithLabelValues(slug).Inc()
}

// RecordQuotePdf increments the counter for generated quote PDFs
func RecordQuotePdf() {
	QuotePdfCounter.Inc()
}
