package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	batchDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_documents_total",
			Help: "Documents processed by batch outcome.",
		},
		[]string{"outcome"},
	)

	batchRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batch_rejected_insufficient_credit_total",
		Help: "Batches rejected before dispatch for lack of credit.",
	})

	creditsDeductedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credits_deducted_total",
		Help: "Credits deducted by the ledger.",
	})

	creditsToppedUpTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credits_topped_up_total",
		Help: "Credits added by top-ups and grants.",
	})

	oracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_call_duration_seconds",
			Help:    "Extraction oracle call duration in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"outcome"},
	)

	oracleInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oracle_calls_in_flight",
		Help: "Extraction oracle calls currently in flight.",
	})

	oracleCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_cache_hits_total",
		Help: "Extraction results served from cache.",
	})

	oracleCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_cache_misses_total",
		Help: "Extraction cache misses.",
	})
)

// ObserveHTTP records one completed request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncBatchDocument counts one document outcome ("success" or "failed").
func IncBatchDocument(outcome string) {
	batchDocumentsTotal.WithLabelValues(outcome).Inc()
}

// IncBatchRejected counts a batch rejected for insufficient credit.
func IncBatchRejected() {
	batchRejectedTotal.Inc()
}

// AddCreditsDeducted adds n to the deducted counter.
func AddCreditsDeducted(n int) {
	if n > 0 {
		creditsDeductedTotal.Add(float64(n))
	}
}

// AddCreditsToppedUp adds n to the top-up counter.
func AddCreditsToppedUp(n int) {
	if n > 0 {
		creditsToppedUpTotal.Add(float64(n))
	}
}

// OracleCallStarted marks a call in flight and returns its completion func.
func OracleCallStarted() func(outcome string) {
	start := time.Now()
	oracleInFlight.Inc()
	return func(outcome string) {
		oracleInFlight.Dec()
		oracleDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

// IncOracleCache records a cache lookup.
func IncOracleCache(hit bool) {
	if hit {
		oracleCacheHits.Inc()
		return
	}
	oracleCacheMisses.Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
