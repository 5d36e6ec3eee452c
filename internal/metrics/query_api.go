package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blocksci",
		Subsystem: "query_api",
		Name:      "requests_total",
		Help:      "Count of query API requests.",
	}, []string{"route", "network", "code"})
	queryAPIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blocksci",
		Subsystem: "query_api",
		Name:      "request_duration_seconds",
		Help:      "Duration of query API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "network", "code"})
)

// QueryAPI tracks metrics for the HTTP query service.
type QueryAPI struct {
	network string
}

// NewQueryAPI creates a QueryAPI metrics collector.
func NewQueryAPI(network string) *QueryAPI {
	if network == "" {
		network = "unknown"
	}
	return &QueryAPI{network: network}
}

// Observe records one handled request.
func (m QueryAPI) Observe(route string, code int, started time.Time) {
	labels := []string{route, m.network, strconv.Itoa(code)}
	queryAPIRequestsTotal.WithLabelValues(labels...).Inc()
	queryAPIRequestDuration.WithLabelValues(labels...).Observe(time.Since(started).Seconds())
}
