package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blocksci",
		Subsystem: "export_repository",
		Name:      "operations_total",
		Help:      "Count of export repository operations.",
	}, []string{"operation", "network", "status"})
	exportRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blocksci",
		Subsystem: "export_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of export repository operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "network", "status"})
)

// ExportRepository tracks metrics for ClickHouse export operations.
type ExportRepository struct {
	network string
}

// NewExportRepository creates an ExportRepository metrics collector.
func NewExportRepository(network string) *ExportRepository {
	if network == "" {
		network = "unknown"
	}
	return &ExportRepository{network: network}
}

// Observe records duration and status of an export operation.
func (m ExportRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	exportRepositoryRequestsTotal.WithLabelValues(operation, m.network, status).Inc()
	exportRepositoryRequestDuration.WithLabelValues(operation, m.network, status).Observe(time.Since(started).Seconds())
}
