package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for an ingestion run
type Metrics struct {
	PagesFetched    prometheus.Counter
	APIRetries      *prometheus.CounterVec
	RecordsUpserted *prometheus.CounterVec
	RecordsSkipped  *prometheus.CounterVec
	DatesProcessed  prometheus.Counter
	DatesSkipped    prometheus.Counter
	FetchDuration   prometheus.Histogram
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered against reg.
// Tests pass a fresh prometheus.NewRegistry to avoid collisions.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "The total number of API pages fetched",
		}),
		APIRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_retries_total",
			Help:      "The total number of API call retries",
		}, []string{"reason"}),
		RecordsUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_upserted_total",
			Help:      "The total number of records upserted",
		}, []string{"entity"}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "The total number of records skipped for missing natural-key fields",
		}, []string{"entity"}),
		DatesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dates_processed_total",
			Help:      "The total number of flight dates ingested",
		}),
		DatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dates_skipped_total",
			Help:      "The total number of flight dates skipped because data already exists",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch all pages for one endpoint call",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
